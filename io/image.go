package io

import (
	"encoding/binary"
	"io"
	"iter"
)

// IMAGE_WORDS_MAX is the largest image payload, in words.
const IMAGE_WORDS_MAX = 1 << 16

// Image is an object image: a block of words loaded at an origin.
//
// On disk an image is a sequence of big-endian 16-bit words. The first
// word is the origin, the remaining words are the data.
type Image struct {
	Origin uint16
	Data   []uint16
}

// ReadImage reads an object image.
func ReadImage(r io.Reader) (img *Image, err error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return
	}

	if len(raw) == 0 {
		err = ErrImageEmpty
		return
	}
	if len(raw)%2 != 0 {
		err = ErrImageTruncated
		return
	}

	words := len(raw)/2 - 1
	if words > IMAGE_WORDS_MAX {
		err = ErrImageTooLarge
		return
	}

	img = &Image{
		Origin: binary.BigEndian.Uint16(raw),
		Data:   make([]uint16, words),
	}
	for n := range img.Data {
		img.Data[n] = binary.BigEndian.Uint16(raw[2+n*2:])
	}

	return
}

// WriteTo writes the image in object format.
func (img *Image) WriteTo(w io.Writer) (n int64, err error) {
	if len(img.Data) > IMAGE_WORDS_MAX {
		err = ErrImageTooLarge
		return
	}

	raw := make([]byte, 0, 2+len(img.Data)*2)
	raw = binary.BigEndian.AppendUint16(raw, img.Origin)
	for _, word := range img.Data {
		raw = binary.BigEndian.AppendUint16(raw, word)
	}

	written, err := w.Write(raw)
	n = int64(written)
	if err == nil && written < len(raw) {
		err = io.ErrShortWrite
	}

	return
}

// Words returns an iterator over the address and value of each data word.
// Addresses wrap at the end of the address space.
func (img *Image) Words() iter.Seq2[uint16, uint16] {
	return func(yield func(addr uint16, value uint16) bool) {
		addr := img.Origin
		for _, word := range img.Data {
			if !yield(addr, word) {
				return
			}
			addr++
		}
	}
}

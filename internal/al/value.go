// Copyright (c) Elliot Nunn
// Licensed under the MIT license

package al

// A Value is a decoded table cell or field payload, one of:
// Int, Float, Byte, String, Word, Dword, IDPair, Size, Vec3, Color, Color3, Unknown.
type Value interface {
	isValue()
}

type (
	Int    int32
	Float  float32
	Byte   uint8
	String string
	Word   uint16
	Dword  uint32
	IDPair struct{ ID1, ID2 uint16 }
	Size   struct{ X, Y uint16 }
	Vec3   struct{ X, Y, Z float32 }
	Color  struct{ R, G, B, A float32 }
	Color3 [3]float32

	// Unknown holds the undecoded bytes of a field whose name is not recognised.
	Unknown struct{ Raw []byte }
)

func (Int) isValue()     {}
func (Float) isValue()   {}
func (Byte) isValue()    {}
func (String) isValue()  {}
func (Word) isValue()    {}
func (Dword) isValue()   {}
func (IDPair) isValue()  {}
func (Size) isValue()    {}
func (Vec3) isValue()    {}
func (Color) isValue()   {}
func (Color3) isValue()  {}
func (Unknown) isValue() {}

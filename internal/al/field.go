// Copyright (c) Elliot Nunn
// Licensed under the MIT license

package al

import (
	"github.com/elliotnunn/alfuel/internal/cursor"
)

// FieldKind identifies a named field of an object or motion entry,
// and so the shape of its payload.
type FieldKind uint8

const (
	FieldUnknown FieldKind = iota
	FieldTexture0ID
	FieldColor
	FieldAlpha
	FieldParentNodeID
	FieldText
	FieldScale
	FieldPos
	FieldWidgetSize
	FieldWidgetSkinID // no payload
	FieldPatternNo
	FieldBlendMode
	FieldDisp
	FieldRot
	FieldCenter
	FieldColor3
)

var fieldKindNames = [...]string{
	FieldUnknown:      "?",
	FieldTexture0ID:   "Texture0ID",
	FieldColor:        "Color",
	FieldAlpha:        "Alpha",
	FieldParentNodeID: "ParentNodeID",
	FieldText:         "Text",
	FieldScale:        "Scale",
	FieldPos:          "Pos",
	FieldWidgetSize:   "WidgetSize",
	FieldWidgetSkinID: "WidgetSkinID",
	FieldPatternNo:    "PatternNo",
	FieldBlendMode:    "BlendMode",
	FieldDisp:         "Disp",
	FieldRot:          "Rot",
	FieldCenter:       "Center",
	FieldColor3:       "Color3",
}

func (k FieldKind) String() string {
	if int(k) < len(fieldKindNames) {
		return fieldKindNames[k]
	}
	return fieldKindNames[FieldUnknown]
}

func (k FieldKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// ALOD field names
var objectFields = map[string]FieldKind{
	"Texture0ID":   FieldTexture0ID,
	"Color":        FieldColor,
	"Alpha":        FieldAlpha,
	"ParentNodeID": FieldParentNodeID,
	"Text":         FieldText,
	"Scale":        FieldScale,
	"Pos":          FieldPos,
	"WidgetSize":   FieldWidgetSize,
	"WidgetSkinID": FieldWidgetSkinID,
}

// ALMT field names
var motionFields = map[string]FieldKind{
	"PatternNo":  FieldPatternNo,
	"BlendMode":  FieldBlendMode,
	"Disp":       FieldDisp,
	"Texture0ID": FieldTexture0ID,
	"Alpha":      FieldAlpha,
	"Pos":        FieldPos,
	"Scale":      FieldScale,
	"Center":     FieldCenter,
	"Rot":        FieldRot,
	"Color3":     FieldColor3,
}

// read decodes the payload of a known field kind.
// It returns nil for kinds that carry nothing.
func (k FieldKind) read(c *cursor.Cursor) Value {
	switch k {
	case FieldTexture0ID:
		return IDPair{c.U16(), c.U16()}
	case FieldColor:
		return Color{c.F32(), c.F32(), c.F32(), c.F32()}
	case FieldAlpha:
		return Float(c.F32())
	case FieldParentNodeID:
		return String(c.String(4))
	case FieldText:
		return String(c.CString())
	case FieldScale, FieldPos, FieldCenter:
		return Vec3{c.F32(), c.F32(), c.F32()}
	case FieldWidgetSize:
		return Size{c.U16(), c.U16()}
	case FieldPatternNo, FieldBlendMode, FieldDisp:
		return Word(c.U16())
	case FieldRot:
		return Dword(c.U32())
	case FieldColor3:
		return Color3{c.F32(), c.F32(), c.F32()}
	}
	return nil
}

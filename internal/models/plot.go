// Package models defines the farm entities persisted by gophfarm.
package models

import "fmt"

// SoilLevel is the quality tier of a plot. It affects yield and growth speed
// in the economy layer; this engine only stores it.
type SoilLevel int

const (
	SoilNormal SoilLevel = iota
	SoilRed
	SoilBlack
	SoilGold
	SoilAmethyst
	SoilSapphire
	SoilObsidian
)

var soilLevelNames = [...]string{"normal", "red", "black", "gold", "amethyst", "sapphire", "obsidian"}

func (l SoilLevel) String() string {
	if l >= 0 && int(l) < len(soilLevelNames) {
		return soilLevelNames[l]
	}
	return fmt.Sprintf("SoilLevel(%d)", int(l))
}

// Field names a plot flag column that may be updated on its own.
type Field string

const (
	FieldWilt       Field = "wiltStatus"
	FieldFertilizer Field = "fertilizerStatus"
	FieldPest       Field = "bugStatus"
	FieldWeed       Field = "weedStatus"
	FieldDrought    Field = "waterStatus"
)

// Fields lists every Field in column order.
var Fields = []Field{FieldWilt, FieldFertilizer, FieldPest, FieldWeed, FieldDrought}

// Plot is one farmable slot. A plot is either fully planted (PlantName set,
// both times positive) or fully empty (all three zero values).
type Plot struct {
	UID       string
	Slot      int
	PlantName string
	PlantedAt int64
	MatureAt  int64
	SoilLevel SoilLevel

	Wilted     bool
	Fertilized bool
	Pest       bool
	Weed       bool
	Drought    bool
}

// Planted reports whether the plot carries a crop. A half-written row counts
// as not planted.
func (p Plot) Planted() bool {
	return p.PlantName != "" && p.PlantedAt > 0
}

// MatureAtOrBefore reports whether the crop is harvestable at now.
func (p Plot) MatureAtOrBefore(now int64) bool {
	return p.Planted() && now >= p.MatureAt
}

// Empty returns a copy reset to the unplanted state. SoilLevel survives.
func (p Plot) Empty() Plot {
	return Plot{UID: p.UID, Slot: p.Slot, SoilLevel: p.SoilLevel}
}

// Flag returns the value of a flag field.
func (p Plot) Flag(f Field) (bool, bool) {
	switch f {
	case FieldWilt:
		return p.Wilted, true
	case FieldFertilizer:
		return p.Fertilized, true
	case FieldPest:
		return p.Pest, true
	case FieldWeed:
		return p.Weed, true
	case FieldDrought:
		return p.Drought, true
	}
	return false, false
}

// Package legacy decodes the flat plot encoding of the old soil table, where
// each of the soil1..soil30 columns packs one plot as
//
//	plantName,plantedAt,matureAt,status,theftList,soilLevel
//
// status is 0 none, 1 weed, 2 pest, 3 drought, 4 wilt. theftList is
// "thief-count|thief-count". Numeric fields may be left empty, meaning 0.
// Only the plant, its times and the soil level decide whether a cell can be
// migrated; a status or theft list that does not decode is dropped and noted
// in Cell.Ignored.
package legacy

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/gophfarm/internal/models"
)

// Packed status codes.
const (
	StatusNone = iota
	StatusWeed
	StatusPest
	StatusDrought
	StatusWilt
)

// ErrMalformed is returned for cells that cannot be decoded.
var ErrMalformed = errors.New("malformed legacy cell")

// Theft is one entry of a cell's theft list.
type Theft struct {
	ThiefUID string
	Count    int64
}

// Cell is a decoded legacy plot.
type Cell struct {
	Slot      int
	PlantName string
	PlantedAt int64
	MatureAt  int64
	Status    int
	Thefts    []Theft
	SoilLevel int

	// Ignored describes the fields that were dropped while decoding.
	Ignored []string
}

const minFields = 4

// ParseCell decodes raw for slot. ok is false for blank cells, which carry
// nothing worth migrating.
func ParseCell(slot int, raw string) (cell Cell, ok bool, err error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Cell{}, false, nil
	}

	fields := strings.Split(raw, ",")
	if len(fields) < minFields {
		return Cell{}, false, fmt.Errorf("%w: slot %d: %d fields", ErrMalformed, slot, len(fields))
	}
	for len(fields) < 6 {
		fields = append(fields, "")
	}

	c := Cell{Slot: slot, PlantName: strings.TrimSpace(fields[0])}

	if c.PlantedAt, err = parseInt(fields[1]); err != nil {
		return Cell{}, false, fmt.Errorf("%w: slot %d plantedAt: %w", ErrMalformed, slot, err)
	}
	if c.MatureAt, err = parseInt(fields[2]); err != nil {
		return Cell{}, false, fmt.Errorf("%w: slot %d matureAt: %w", ErrMalformed, slot, err)
	}
	if status, err := parseInt(fields[3]); err != nil || status < StatusNone || status > StatusWilt {
		c.Ignored = append(c.Ignored, fmt.Sprintf("status %q", fields[3]))
	} else {
		c.Status = int(status)
	}

	level, err := parseInt(fields[5])
	if err != nil || level < int64(models.SoilNormal) || level > int64(models.SoilObsidian) {
		return Cell{}, false, fmt.Errorf("%w: slot %d soil level %q", ErrMalformed, slot, fields[5])
	}
	c.SoilLevel = int(level)

	if c.PlantName == "" {
		c.PlantedAt, c.MatureAt = 0, 0
		return c, true, nil
	}
	if c.PlantedAt <= 0 || c.MatureAt <= 0 {
		return Cell{}, false, fmt.Errorf("%w: slot %d: %s planted without times", ErrMalformed, slot, c.PlantName)
	}

	if thefts, err := parseThefts(fields[4]); err != nil {
		c.Ignored = append(c.Ignored, err.Error())
	} else {
		c.Thefts = thefts
	}
	return c, true, nil
}

func parseInt(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	return strconv.ParseInt(s, 10, 64)
}

func parseThefts(s string) ([]Theft, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}

	byThief := make(map[string]int)
	var out []Theft
	for _, part := range strings.Split(s, "|") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		i := strings.LastIndex(part, "-")
		if i <= 0 {
			return nil, fmt.Errorf("theft entry %q", part)
		}
		count, err := strconv.ParseInt(strings.TrimSpace(part[i+1:]), 10, 64)
		if err != nil || count < 1 {
			return nil, fmt.Errorf("theft entry %q", part)
		}
		thief := strings.TrimSpace(part[:i])

		// one row per thief; repeated entries add up
		if idx, seen := byThief[thief]; seen {
			out[idx].Count += count
			continue
		}
		byThief[thief] = len(out)
		out = append(out, Theft{ThiefUID: thief, Count: count})
	}
	return out, nil
}

// Plot converts the cell into a normalized plot row for uid.
func (c Cell) Plot(uid string) models.Plot {
	p := models.Plot{
		UID:       uid,
		Slot:      c.Slot,
		PlantName: c.PlantName,
		PlantedAt: c.PlantedAt,
		MatureAt:  c.MatureAt,
		SoilLevel: models.SoilLevel(c.SoilLevel),
	}
	switch c.Status {
	case StatusWeed:
		p.Weed = true
	case StatusPest:
		p.Pest = true
	case StatusDrought:
		p.Drought = true
	case StatusWilt:
		p.Wilted = true
	}
	return p
}

// TheftRecords converts the theft list into ledger rows. The legacy format
// kept no theft time, so the planting time stands in.
func (c Cell) TheftRecords(victim string) []models.TheftRecord {
	out := make([]models.TheftRecord, 0, len(c.Thefts))
	for _, t := range c.Thefts {
		out = append(out, models.TheftRecord{
			VictimUID: victim,
			Slot:      c.Slot,
			ThiefUID:  t.ThiefUID,
			Count:     t.Count,
			StolenAt:  c.PlantedAt,
		})
	}
	return out
}

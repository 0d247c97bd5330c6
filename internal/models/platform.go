package models

import "strings"

// Platform is the canonical courier code stored in the platforms table
// (platform_code column) and on delivery rows.
type Platform string

const (
	PlatformGrubhub  Platform = "grubHub"
	PlatformUberEats Platform = "uberEats"
	PlatformUnknown  Platform = ""
)

// platformAliases maps assorted UI labels to canonical codes. Matching is
// case-insensitive; unknown strings resolve to PlatformUnknown rather than
// guessing.
var platformAliases = map[string]Platform{
	"grubhub":   PlatformGrubhub,
	"gh":        PlatformGrubhub,
	"grub hub":  PlatformGrubhub,
	"ubereats":  PlatformUberEats,
	"uber eats": PlatformUberEats,
	"ue":        PlatformUberEats,
	"uber":      PlatformUberEats,
}

// ParsePlatform normalizes a free-form courier string to a canonical code.
func ParsePlatform(name string) Platform {
	s := strings.ToLower(strings.TrimSpace(name))
	if p, ok := platformAliases[s]; ok {
		return p
	}
	return PlatformUnknown
}

// DisplayName converts a canonical code back to the friendly UI label.
func (p Platform) DisplayName() string {
	switch p {
	case PlatformGrubhub:
		return "Grubhub"
	case PlatformUberEats:
		return "Uber Eats"
	default:
		return string(p)
	}
}

// PlatformRow is one row of the platforms lookup table.
type PlatformRow struct {
	PlatformID   int    `json:"platform_id" db:"platform_id"`
	PlatformCode string `json:"platform_code" db:"platform_code"`
}

// PlatformLookup resolves platform codes to ids and back. It is built once
// per sync push from the platforms table.
type PlatformLookup struct {
	byCode map[string]int
	byID   map[int]Platform
}

// NewPlatformLookup builds the bidirectional lookup. Codes are keyed
// lowercase so lookups tolerate mismatched casing in stored data.
func NewPlatformLookup(rows []PlatformRow) PlatformLookup {
	l := PlatformLookup{
		byCode: make(map[string]int, len(rows)),
		byID:   make(map[int]Platform, len(rows)),
	}
	for _, r := range rows {
		l.byCode[strings.ToLower(r.PlatformCode)] = r.PlatformID
		l.byID[r.PlatformID] = Platform(r.PlatformCode)
	}
	return l
}

// IDForCourier resolves a free-form courier string to a platform id.
// Returns nil when the courier is unknown or not present in the table.
func (l PlatformLookup) IDForCourier(courier string) *int {
	p := ParsePlatform(courier)
	if p == PlatformUnknown {
		return nil
	}
	id, ok := l.byCode[strings.ToLower(string(p))]
	if !ok {
		return nil
	}
	return &id
}

// CodeForID resolves a platform id back to its canonical code.
func (l PlatformLookup) CodeForID(id *int) Platform {
	if id == nil {
		return PlatformUnknown
	}
	return l.byID[*id]
}

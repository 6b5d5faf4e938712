package palette

import "netcanvas/internal/domain"

// DefaultGlyphs returns Material Design Icons codepoints for common device roles
func DefaultGlyphs() []GlyphEntry {
	return []GlyphEntry{
		{Name: "server", Codepoint: 0xF048B},
		{Name: "router", Codepoint: 0xF11E2},
		{Name: "switch", Codepoint: 0xF0A6F},
		{Name: "firewall", Codepoint: 0xF0582},
		{Name: "access-point", Codepoint: 0xF05A9},
		{Name: "desktop", Codepoint: 0xF0379},
		{Name: "laptop", Codepoint: 0xF0322},
		{Name: "printer", Codepoint: 0xF042A},
		{Name: "cloud", Codepoint: 0xF015F},
		{Name: "database", Codepoint: 0xF01BC},
	}
}

// DefaultColors returns colors for the well-known status keys
func DefaultColors() []ColorEntry {
	return []ColorEntry{
		{Name: domain.StateUp, Color: "#2e7d32"},
		{Name: domain.StateDown, Color: "#c62828"},
		{Name: domain.StateWarning, Color: "#ef6c00"},
		{Name: domain.StateUnknown, Color: "#808080"},
	}
}

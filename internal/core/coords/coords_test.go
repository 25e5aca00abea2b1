package coords_test

import (
	"math"
	"testing"

	"github.com/rook-prog/CartoZen/internal/core/coords"
	"github.com/rook-prog/CartoZen/internal/core/domain"
)

func near(a, b, tol float64) bool { return math.Abs(a-b) <= tol }

func TestParseDMS_Examples(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"40 30 0 N", 40.5, true},
		{"40 30 0 S", -40.5, true},
		{`20° 30' 15" N`, 20 + 30.0/60 + 15.0/3600, true},
		{"72°30'15\"W", -(72 + 30.0/60 + 15.0/3600), true},
		{"45 e", 45, true},
		{"40.5N", 40.5, true},
		{"12 30 s", -12.5, true},
		{"40 30 0 North", 40.5, true},
		{"40 30 0 south", -40.5, true},
		{"72°30' West", -72.5, true},
		{"10 East", 10, true},
		{"40 30 0 Northing", 0, false},
		{"not a coordinate", 0, false},
		{"40 30 0", 0, false},
		{"N", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		got, ok := coords.ParseDMS(tt.in)
		if ok != tt.ok {
			t.Errorf("ParseDMS(%q) ok = %v, want %v", tt.in, ok, tt.ok)
			continue
		}
		if ok && !near(got, tt.want, 1e-9) {
			t.Errorf("ParseDMS(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseDMS_SignAndComponents(t *testing.T) {
	dirs := map[string]float64{"N": 1, "E": 1, "S": -1, "W": -1}
	for dir, sign := range dirs {
		for d := 0; d < 180; d += 17 {
			for m := 0; m < 60; m += 13 {
				for s := 0.0; s < 60; s += 14.5 {
					in := formatTriple(d, m, s) + " " + dir
					got, ok := coords.ParseDMS(in)
					if !ok {
						t.Fatalf("ParseDMS(%q) did not resolve", in)
					}
					want := sign * (float64(d) + float64(m)/60 + s/3600)
					if !near(got, want, 1e-6) {
						t.Fatalf("ParseDMS(%q) = %v, want %v", in, got, want)
					}
				}
			}
		}
	}
}

func formatTriple(d, m int, s float64) string {
	return itoa(d) + " " + itoa(m) + " " + ftoa(s)
}

func itoa(i int) string { return ftoa(float64(i)) }

func ftoa(f float64) string {
	return domain.NumberCell(f).String()
}

func TestDMMToDD(t *testing.T) {
	if got := coords.DMMToDD(72.3045); !near(got, 72.5075, 1e-4) {
		t.Errorf("DMMToDD(72.3045) = %v, want 72.5075", got)
	}
	if got := coords.DMMToDD(-72.3045); !near(got, -72.5075, 1e-4) {
		t.Errorf("DMMToDD(-72.3045) = %v, want -72.5075", got)
	}
}

func TestIsProbablyDMM(t *testing.T) {
	tests := []struct {
		x    float64
		axis domain.Axis
		want bool
	}{
		{72.3045, domain.AxisLat, true},
		{-72.3045, domain.AxisLat, true},
		{72.02, domain.AxisLat, false}, // moves < 0.05°
		{72.75, domain.AxisLat, false}, // 75 minutes is not valid
		{95.3, domain.AxisLat, false},  // degrees beyond latitude bound
		{95.3, domain.AxisLon, true},   // fine for longitude
		{181.2, domain.AxisLon, false}, // beyond longitude bound
		{10, domain.AxisLat, false},    // whole degrees never move
		{math.NaN(), domain.AxisLat, false},
	}
	for _, tt := range tests {
		if got := coords.IsProbablyDMM(tt.x, tt.axis); got != tt.want {
			t.Errorf("IsProbablyDMM(%v, %s) = %v, want %v", tt.x, tt.axis, got, tt.want)
		}
	}
}

func TestParseDecimal(t *testing.T) {
	tests := []struct {
		name    string
		cell    domain.Cell
		axis    domain.Axis
		autoFix bool
		want    float64
		ok      bool
		dmm     bool
	}{
		{"number kept", domain.NumberCell(12.02), domain.AxisLat, true, 12.02, true, false},
		{"number repaired", domain.NumberCell(72.3045), domain.AxisLat, true, 72.5075, true, true},
		{"repair disabled", domain.NumberCell(72.3045), domain.AxisLat, false, 72.3045, true, false},
		{"comma decimal", domain.TextCell(" 12,02 "), domain.AxisLat, true, 12.02, true, false},
		{"comma decimal repaired", domain.TextCell("72,3045"), domain.AxisLon, true, 72.5075, true, true},
		{"loose with cardinal", domain.TextCell("12.02°N"), domain.AxisLat, true, 12.02, true, false},
		{"loose west", domain.TextCell("72°30'W"), domain.AxisLon, true, -72.5, true, false},
		{"loose spelled south", domain.TextCell("12.02 South"), domain.AxisLat, true, -12.02, true, false},
		{"loose minus", domain.TextCell("-12,02 deg"), domain.AxisLat, true, -12.02, true, false},
		{"garbage", domain.TextCell("n/a"), domain.AxisLat, true, 0, false, false},
		{"too many tokens", domain.TextCell("1 2 3 4"), domain.AxisLat, true, 0, false, false},
		{"empty", domain.Cell{}, domain.AxisLat, true, 0, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := coords.ParseDecimal(tt.cell, tt.axis, tt.autoFix)
			if v.OK != tt.ok || v.DMM != tt.dmm {
				t.Fatalf("got %+v, want ok=%v dmm=%v", v, tt.ok, tt.dmm)
			}
			if v.OK && !near(v.Deg, tt.want, 1e-4) {
				t.Errorf("got %v, want %v", v.Deg, tt.want)
			}
		})
	}
}

func TestParseDecimal_IdempotentOnDecimalDegrees(t *testing.T) {
	for x := -89.99; x < 90; x += 0.37 {
		if coords.IsProbablyDMM(x, domain.AxisLat) {
			continue
		}
		v := coords.ParseDecimal(domain.NumberCell(x), domain.AxisLat, true)
		if !v.OK || v.Deg != x || v.DMM {
			t.Fatalf("ParseDecimal(%v) = %+v, want unchanged", x, v)
		}
	}
}

func TestParseCell_NumberInDMSModeFails(t *testing.T) {
	v := coords.ParseCell(domain.NumberCell(40.5), domain.FormatDMS, domain.AxisLat, true)
	if v.OK {
		t.Errorf("numeric cell in DMS mode resolved to %v", v.Deg)
	}
}

func TestResolveColumns(t *testing.T) {
	lat, lon, err := coords.ResolveColumns([]string{"Station", " LATITUDE", "Long"}, "", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if lat != 1 || lon != 2 {
		t.Errorf("got lat=%d lon=%d, want 1, 2", lat, lon)
	}

	lat, lon, err = coords.ResolveColumns([]string{"y_coord", "X_Coord", "lat"}, "", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if lat != 2 || lon != 1 {
		t.Errorf("alias order: got lat=%d lon=%d, want 2, 1", lat, lon)
	}

	lat, lon, err = coords.ResolveColumns([]string{"northing_deg", "easting_deg"}, "Northing_Deg", "easting_deg")
	if err != nil || lat != 0 || lon != 1 {
		t.Errorf("explicit names: got %d, %d, %v", lat, lon, err)
	}
}

func TestFormatters(t *testing.T) {
	if got := coords.FormatDD(12.3456, domain.AxisLat); got != "12.35°N" {
		t.Errorf("FormatDD = %q", got)
	}
	if got := coords.FormatDD(-3.5, domain.AxisLon); got != "3.50°W" {
		t.Errorf("FormatDD = %q", got)
	}
	if got := coords.FormatDMS(40.5, domain.AxisLat); got != `40°30'0"N` {
		t.Errorf("FormatDMS = %q", got)
	}
	if got := coords.FormatDMS(-0.25, domain.AxisLon); got != `0°15'0"W` {
		t.Errorf("FormatDMS = %q", got)
	}
}

package extract

import (
	"errors"
	"strings"
	"testing"

	"github.com/OpenTraceLab/OpenTracePCB/pkg/altium"
	"github.com/OpenTraceLab/OpenTracePCB/pkg/pcb"
)

func TestDetectFormat(t *testing.T) {
	easyedaDoc := []byte(`{"docType":"5","canvas":"CA~1~2","shape":["TRACK~1~1~0 0 1 1~x"]}`)
	cfbHeader := append(append([]byte{}, altium.CFBMagic...), make([]byte, 24)...)

	tests := []struct {
		name     string
		filename string
		data     []byte
		want     Format
		wantErr  bool
	}{
		{"kicad extension", "board.kicad_pcb", []byte("(kicad_pcb)"), FormatKiCad, false},
		{"easyeda json", "board.json", easyedaDoc, FormatEasyEDA, false},
		{"plain json rejected", "data.json", []byte(`{"a":1}`), "", true},
		{"eagle brd", "board.brd", []byte("<eagle/>"), FormatEagle, false},
		{"fusion fbrd", "board.fbrd", []byte("<eagle/>"), FormatEagle, false},
		{"altium extension", "board.PcbDoc", cfbHeader, FormatAltium, false},
		{"circuitstudio extension", "board.CSPcbDoc", cfbHeader, FormatAltium, false},
		{"cfb magic overrides name", "mystery.bin", cfbHeader, FormatAltium, false},
		{"unknown extension", "board.xyz", []byte("data"), "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DetectFormat(tt.filename, tt.data)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("DetectFormat() expected error, got %q", got)
				}
				if !errors.Is(err, pcb.ErrUnsupportedFormat) {
					t.Errorf("error %v is not ErrUnsupportedFormat", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("DetectFormat() error: %v", err)
			}
			if got != tt.want {
				t.Errorf("DetectFormat() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseFormat(t *testing.T) {
	for _, tag := range []string{"kicad", "easyeda", "eagle", "altium", "KiCad"} {
		if _, err := ParseFormat(tag); err != nil {
			t.Errorf("ParseFormat(%q) error: %v", tag, err)
		}
	}
	if _, err := ParseFormat("gerber"); !errors.Is(err, pcb.ErrUnsupportedFormat) {
		t.Errorf("ParseFormat(gerber) = %v, want ErrUnsupportedFormat", err)
	}
}

func TestExtractBytesKiCad(t *testing.T) {
	board := `(kicad_pcb (version 20221018)
	  (net 0 "")
	  (gr_line (start 0 0) (end 10 0) (width 0.1) (layer "Edge.Cuts")))`
	data, err := ExtractBytes([]byte(board), FormatKiCad, pcb.ExtractOptions{})
	if err != nil {
		t.Fatalf("ExtractBytes() error: %v", err)
	}
	if len(data.Edges) != 1 {
		t.Errorf("len(Edges) = %d, want 1", len(data.Edges))
	}

	out, err := EmitJSON(data, false)
	if err != nil {
		t.Fatalf("EmitJSON() error: %v", err)
	}
	for _, key := range []string{`"edges_bbox"`, `"edges"`, `"drawings"`, `"footprints"`, `"metadata"`} {
		if !strings.Contains(string(out), key) {
			t.Errorf("JSON output missing %s", key)
		}
	}
	if strings.Contains(string(out), "NaN") || strings.Contains(string(out), "Inf") {
		t.Error("JSON output contains non-finite values")
	}
}

func TestEmitJSONPretty(t *testing.T) {
	data, err := ExtractBytes([]byte(`(kicad_pcb (version 20221018) (net 0 ""))`), FormatKiCad, pcb.ExtractOptions{})
	if err != nil {
		t.Fatalf("ExtractBytes() error: %v", err)
	}
	out, err := EmitJSON(data, true)
	if err != nil {
		t.Fatalf("EmitJSON() error: %v", err)
	}
	if !strings.Contains(string(out), "\n  ") {
		t.Error("pretty output is not indented")
	}
}

func TestExtractBytesUnknownFormat(t *testing.T) {
	if _, err := ExtractBytes(nil, Format("gdsii"), pcb.ExtractOptions{}); !errors.Is(err, pcb.ErrUnsupportedFormat) {
		t.Errorf("ExtractBytes(gdsii) = %v, want ErrUnsupportedFormat", err)
	}
}

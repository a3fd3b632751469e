// Package extract is the single entry point of the PCB data extraction
// core: it probes the input format, invokes the matching parser and emits
// the canonical JSON form of the neutral IR.
package extract

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/OpenTraceLab/OpenTracePCB/pkg/altium"
	"github.com/OpenTraceLab/OpenTracePCB/pkg/easyeda"
	"github.com/OpenTraceLab/OpenTracePCB/pkg/eagle"
	"github.com/OpenTraceLab/OpenTracePCB/pkg/kicad"
	"github.com/OpenTraceLab/OpenTracePCB/pkg/pcb"
)

// Format identifies one supported EDA file format.
type Format string

// Supported formats.
const (
	FormatKiCad   Format = "kicad"
	FormatEasyEDA Format = "easyeda"
	FormatEagle   Format = "eagle"
	FormatAltium  Format = "altium"
)

// ParseFormat resolves a format tag given on the command line.
func ParseFormat(tag string) (Format, error) {
	switch strings.ToLower(tag) {
	case "kicad":
		return FormatKiCad, nil
	case "easyeda":
		return FormatEasyEDA, nil
	case "eagle":
		return FormatEagle, nil
	case "altium":
		return FormatAltium, nil
	}
	return "", fmt.Errorf("%w: unknown format tag %q", pcb.ErrUnsupportedFormat, tag)
}

// DetectFormat probes a file by content and name. Bytes beginning with the
// CFB magic dispatch to Altium regardless of extension.
func DetectFormat(filename string, data []byte) (Format, error) {
	if bytes.HasPrefix(data, altium.CFBMagic) {
		return FormatAltium, nil
	}
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".kicad_pcb":
		return FormatKiCad, nil
	case ".json":
		if easyeda.IsBoardJSON(data) {
			return FormatEasyEDA, nil
		}
		return "", fmt.Errorf("%w: %s is not an EasyEDA board document", pcb.ErrUnsupportedFormat, filename)
	case ".brd", ".fbrd":
		return FormatEagle, nil
	case ".pcbdoc", ".cspcbdoc", ".cmpcbdoc":
		return FormatAltium, nil
	}
	return "", fmt.Errorf("%w: %s", pcb.ErrUnsupportedFormat, filename)
}

// Extract reads a board file, auto-detects its format and parses it.
func Extract(path string, opts pcb.ExtractOptions) (*pcb.PcbData, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	format, err := DetectFormat(path, data)
	if err != nil {
		return nil, err
	}
	return ExtractBytes(data, format, opts)
}

// ExtractBytes parses raw bytes with an explicit format tag.
func ExtractBytes(data []byte, format Format, opts pcb.ExtractOptions) (*pcb.PcbData, error) {
	switch format {
	case FormatKiCad:
		return kicad.Parse(data, opts)
	case FormatEasyEDA:
		return easyeda.Parse(data, opts)
	case FormatEagle:
		return eagle.Parse(data, opts)
	case FormatAltium:
		return altium.Parse(data, opts)
	}
	return nil, fmt.Errorf("%w: %q", pcb.ErrUnsupportedFormat, string(format))
}

// EmitJSON serializes the IR in canonical form: field order per the IR
// definition, floats rounded to 6 decimals, arrays in insertion order.
func EmitJSON(data *pcb.PcbData, pretty bool) ([]byte, error) {
	if pretty {
		return json.MarshalIndent(data, "", "  ")
	}
	return json.Marshal(data)
}

// Package eagle parses Eagle and Fusion360 Electronics board files
// (.brd/.fbrd). The file is an XML document; the tree is modelled with
// encoding/xml struct tags and converted to the neutral IR after indexing
// the library packages.
package eagle

import "encoding/xml"

type eagleFile struct {
	XMLName xml.Name `xml:"eagle"`
	Drawing drawing  `xml:"drawing"`
}

type drawing struct {
	Grid  grid   `xml:"grid"`
	Board *board `xml:"board"`
}

type grid struct {
	Unit     string `xml:"unit,attr"`
	UnitDist string `xml:"unitdist,attr"`
}

type board struct {
	Plain     plain       `xml:"plain"`
	Libraries []library   `xml:"libraries>library"`
	Elements  []element   `xml:"elements>element"`
	Signals   []signal    `xml:"signals>signal"`
}

type plain struct {
	Wires      []wire      `xml:"wire"`
	Circles    []circle    `xml:"circle"`
	Rectangles []rectangle `xml:"rectangle"`
	Polygons   []polygon   `xml:"polygon"`
	Texts      []text      `xml:"text"`
}

type library struct {
	Name     string    `xml:"name,attr"`
	Packages []pkg     `xml:"packages>package"`
}

type pkg struct {
	Name       string      `xml:"name,attr"`
	Pads       []pad       `xml:"pad"`
	SMDs       []smd       `xml:"smd"`
	Wires      []wire      `xml:"wire"`
	Circles    []circle    `xml:"circle"`
	Rectangles []rectangle `xml:"rectangle"`
	Polygons   []polygon   `xml:"polygon"`
	Texts      []text      `xml:"text"`
}

type pad struct {
	Name     string  `xml:"name,attr"`
	X        float64 `xml:"x,attr"`
	Y        float64 `xml:"y,attr"`
	Drill    float64 `xml:"drill,attr"`
	Diameter float64 `xml:"diameter,attr"`
	Shape    string  `xml:"shape,attr"`
	Rot      string  `xml:"rot,attr"`
}

type smd struct {
	Name      string  `xml:"name,attr"`
	X         float64 `xml:"x,attr"`
	Y         float64 `xml:"y,attr"`
	DX        float64 `xml:"dx,attr"`
	DY        float64 `xml:"dy,attr"`
	Layer     int     `xml:"layer,attr"`
	Roundness float64 `xml:"roundness,attr"`
	Rot       string  `xml:"rot,attr"`
}

type wire struct {
	X1    float64 `xml:"x1,attr"`
	Y1    float64 `xml:"y1,attr"`
	X2    float64 `xml:"x2,attr"`
	Y2    float64 `xml:"y2,attr"`
	Width float64 `xml:"width,attr"`
	Layer int     `xml:"layer,attr"`
	Curve float64 `xml:"curve,attr"`
}

type circle struct {
	X      float64 `xml:"x,attr"`
	Y      float64 `xml:"y,attr"`
	Radius float64 `xml:"radius,attr"`
	Width  float64 `xml:"width,attr"`
	Layer  int     `xml:"layer,attr"`
}

type rectangle struct {
	X1    float64 `xml:"x1,attr"`
	Y1    float64 `xml:"y1,attr"`
	X2    float64 `xml:"x2,attr"`
	Y2    float64 `xml:"y2,attr"`
	Layer int     `xml:"layer,attr"`
}

type polygon struct {
	Width    float64  `xml:"width,attr"`
	Layer    int      `xml:"layer,attr"`
	Vertices []vertex `xml:"vertex"`
}

type vertex struct {
	X     float64 `xml:"x,attr"`
	Y     float64 `xml:"y,attr"`
	Curve float64 `xml:"curve,attr"`
}

type text struct {
	X     float64 `xml:"x,attr"`
	Y     float64 `xml:"y,attr"`
	Size  float64 `xml:"size,attr"`
	Layer int     `xml:"layer,attr"`
	Ratio float64 `xml:"ratio,attr"`
	Rot   string  `xml:"rot,attr"`
	Value string  `xml:",chardata"`
}

type element struct {
	Name       string      `xml:"name,attr"`
	Library    string      `xml:"library,attr"`
	Package    string      `xml:"package,attr"`
	Value      string      `xml:"value,attr"`
	X          float64     `xml:"x,attr"`
	Y          float64     `xml:"y,attr"`
	Rot        string      `xml:"rot,attr"`
	Attributes []attribute `xml:"attribute"`
}

type attribute struct {
	Name  string `xml:"name,attr"`
	Value string `xml:"value,attr"`
}

type signal struct {
	Name     string    `xml:"name,attr"`
	Wires    []wire    `xml:"wire"`
	Vias     []via     `xml:"via"`
	Polygons []polygon `xml:"polygon"`
}

type via struct {
	X        float64 `xml:"x,attr"`
	Y        float64 `xml:"y,attr"`
	Drill    float64 `xml:"drill,attr"`
	Diameter float64 `xml:"diameter,attr"`
}

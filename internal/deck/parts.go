// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package deck

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"path"
	"strings"

	"golang.org/x/net/html/charset"
)

// decode unmarshals the XML part name into v. Parts declaring a non-UTF-8
// encoding are transcoded.
func (pk *pkg) decode(name string, v any) error {
	data, err := pk.read(name)
	if err != nil {
		return err
	}
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.CharsetReader = charset.NewReaderLabel
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("decoding %s: %w", name, err)
	}
	return nil
}

// presentationXML is ppt/presentation.xml.
type presentationXML struct {
	SlideIDs []slideIDXML `xml:"sldIdLst>sldId"`
}

type slideIDXML struct {
	ID  string `xml:"id,attr"`
	RID string `xml:"http://schemas.openxmlformats.org/officeDocument/2006/relationships id,attr"`
}

// slideXML is ppt/slides/slideN.xml.
type slideXML struct {
	CSld cSldXML `xml:"cSld"`
}

// slideLayoutXML is ppt/slideLayouts/slideLayoutN.xml.
type slideLayoutXML struct {
	CSld cSldXML `xml:"cSld"`
}

// notesSlideXML is ppt/notesSlides/notesSlideN.xml.
type notesSlideXML struct {
	CSld cSldXML `xml:"cSld"`
}

type cSldXML struct {
	Name   string       `xml:"name,attr"`
	SpTree shapeTreeXML `xml:"spTree"`
}

// shapeTreeXML is a p:spTree or p:grpSp. Children keep document order, which
// separate per-element slices would lose.
type shapeTreeXML struct {
	Name  string
	Items []shapeNodeXML
}

// shapeNodeXML holds exactly one of its fields.
type shapeNodeXML struct {
	Sp    *spXML
	Pic   *picXML
	Group *shapeTreeXML
}

func (t *shapeTreeXML) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch el := tok.(type) {
		case xml.StartElement:
			switch el.Name.Local {
			case "nvGrpSpPr":
				var nv nvGrpSpPrXML
				if err := d.DecodeElement(&nv, &el); err != nil {
					return err
				}
				t.Name = nv.CNvPr.Name
			case "sp":
				sp := &spXML{}
				if err := d.DecodeElement(sp, &el); err != nil {
					return err
				}
				t.Items = append(t.Items, shapeNodeXML{Sp: sp})
			case "pic":
				pic := &picXML{}
				if err := d.DecodeElement(pic, &el); err != nil {
					return err
				}
				t.Items = append(t.Items, shapeNodeXML{Pic: pic})
			case "grpSp":
				grp := &shapeTreeXML{}
				if err := d.DecodeElement(grp, &el); err != nil {
					return err
				}
				t.Items = append(t.Items, shapeNodeXML{Group: grp})
			default:
				// graphicFrame, cxnSp, contentPart, mc:AlternateContent, grpSpPr
				if err := d.Skip(); err != nil {
					return err
				}
			}
		case xml.EndElement:
			return nil
		}
	}
}

type nvGrpSpPrXML struct {
	CNvPr cNvPrXML `xml:"cNvPr"`
}

type cNvPrXML struct {
	ID   int    `xml:"id,attr"`
	Name string `xml:"name,attr"`
}

// spXML is a p:sp shape.
type spXML struct {
	NvSpPr nvSpPrXML  `xml:"nvSpPr"`
	TxBody *txBodyXML `xml:"txBody"`
}

type nvSpPrXML struct {
	CNvPr cNvPrXML `xml:"cNvPr"`
	NvPr  nvPrXML  `xml:"nvPr"`
}

type nvPrXML struct {
	Ph *phXML `xml:"ph"`
}

type phXML struct {
	Type string `xml:"type,attr"`
	Idx  int    `xml:"idx,attr"`
}

type txBodyXML struct {
	P []paragraphXML `xml:"p"`
}

// paragraphXML is an a:p. Text concatenates runs and fields in document order;
// a:br becomes a newline.
type paragraphXML struct {
	Text string
}

func (p *paragraphXML) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	var b strings.Builder
	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch el := tok.(type) {
		case xml.StartElement:
			switch el.Name.Local {
			case "r", "fld":
				var run runXML
				if err := d.DecodeElement(&run, &el); err != nil {
					return err
				}
				b.WriteString(run.T)
			case "br":
				b.WriteString("\n")
				if err := d.Skip(); err != nil {
					return err
				}
			default:
				if err := d.Skip(); err != nil {
					return err
				}
			}
		case xml.EndElement:
			p.Text = b.String()
			return nil
		}
	}
}

type runXML struct {
	T string `xml:"t"`
}

// picXML is a p:pic shape.
type picXML struct {
	NvPicPr  nvPicPrXML  `xml:"nvPicPr"`
	BlipFill blipFillXML `xml:"blipFill"`
}

type nvPicPrXML struct {
	CNvPr cNvPrXML `xml:"cNvPr"`
}

type blipFillXML struct {
	Blip blipXML `xml:"blip"`
}

type blipXML struct {
	Embed string `xml:"http://schemas.openxmlformats.org/officeDocument/2006/relationships embed,attr"`
	Link  string `xml:"http://schemas.openxmlformats.org/officeDocument/2006/relationships link,attr"`
}

// relationshipsXML is a .rels part. source is the part the relationships
// belong to and anchors relative targets.
type relationshipsXML struct {
	Relationships []relationshipXML `xml:"Relationship"`
	source        string
}

type relationshipXML struct {
	ID         string `xml:"Id,attr"`
	Type       string `xml:"Type,attr"`
	Target     string `xml:"Target,attr"`
	TargetMode string `xml:"TargetMode,attr"`
}

func (r *relationshipsXML) byID(id string) (relationshipXML, bool) {
	for _, rel := range r.Relationships {
		if rel.ID == id {
			return rel, true
		}
	}
	return relationshipXML{}, false
}

func (r *relationshipsXML) firstOfType(suffix string) (relationshipXML, bool) {
	for _, rel := range r.Relationships {
		if strings.HasSuffix(rel.Type, suffix) {
			return rel, true
		}
	}
	return relationshipXML{}, false
}

// resolve returns the archive path of an internal relationship target.
func (r *relationshipsXML) resolve(rel relationshipXML) string {
	if strings.HasPrefix(rel.Target, "/") {
		return strings.TrimPrefix(rel.Target, "/")
	}
	return path.Join(path.Dir(r.source), rel.Target)
}

package entity

import "github.com/OpenTraceLab/OpenTraceCAD/pkg/geo"

// AttachmentPoint positions dimension text relative to middleOfText
type AttachmentPoint int

const (
	AttachTopLeft AttachmentPoint = iota + 1
	AttachTopCenter
	AttachTopRight
	AttachMiddleLeft
	AttachMiddleCenter
	AttachMiddleRight
	AttachBottomLeft
	AttachBottomCenter
	AttachBottomRight
)

// LineSpacingStyle controls how lineSpacingFactor is applied
type LineSpacingStyle int

const (
	SpacingAtLeast LineSpacingStyle = iota + 1
	SpacingExact
)

// Dimension holds the fields every dimension kind shares
type Dimension struct {
	definitionPoint   geo.Coordinate
	middleOfText      geo.Coordinate
	attachmentPoint   AttachmentPoint
	textAngle         float64
	lineSpacingFactor float64
	lineSpacingStyle  LineSpacingStyle
	explicitValue     string
}

// DimensionBuilder collects the shared dimension fields
type DimensionBuilder struct {
	DefinitionPoint   geo.Coordinate
	MiddleOfText      geo.Coordinate
	AttachmentPoint   AttachmentPoint
	TextAngle         float64
	LineSpacingFactor float64
	LineSpacingStyle  LineSpacingStyle
	ExplicitValue     string // "<>" shows the measured value
}

func (b DimensionBuilder) dimension() Dimension {
	d := Dimension{
		definitionPoint:   b.DefinitionPoint,
		middleOfText:      b.MiddleOfText,
		attachmentPoint:   b.AttachmentPoint,
		textAngle:         b.TextAngle,
		lineSpacingFactor: b.LineSpacingFactor,
		lineSpacingStyle:  b.LineSpacingStyle,
		explicitValue:     b.ExplicitValue,
	}
	if d.attachmentPoint == 0 {
		d.attachmentPoint = AttachMiddleCenter
	}
	if d.lineSpacingFactor == 0 {
		d.lineSpacingFactor = 1
	}
	if d.lineSpacingStyle == 0 {
		d.lineSpacingStyle = SpacingAtLeast
	}
	return d
}

// DefinitionPoint returns the point the dimension measures from
func (d Dimension) DefinitionPoint() geo.Coordinate { return d.definitionPoint }

// MiddleOfText returns the text anchor
func (d Dimension) MiddleOfText() geo.Coordinate { return d.middleOfText }

// AttachmentPoint returns the text attachment
func (d Dimension) AttachmentPoint() AttachmentPoint { return d.attachmentPoint }

// TextAngle returns the text rotation in radians
func (d Dimension) TextAngle() float64 { return d.textAngle }

// LineSpacingFactor returns the text line spacing factor
func (d Dimension) LineSpacingFactor() float64 { return d.lineSpacingFactor }

// LineSpacingStyle returns the text line spacing style
func (d Dimension) LineSpacingStyle() LineSpacingStyle { return d.lineSpacingStyle }

// ExplicitValue returns the text override
func (d Dimension) ExplicitValue() string { return d.explicitValue }

// mapPoints applies fn to both shared coordinate fields
func (d Dimension) mapPoints(fn func(geo.Coordinate) geo.Coordinate) Dimension {
	d.definitionPoint = fn(d.definitionPoint)
	d.middleOfText = fn(d.middleOfText)
	return d
}

func (d Dimension) properties(props Properties) {
	props[PropDefinitionPoint] = d.definitionPoint
	props[PropMiddleOfText] = d.middleOfText
	props[PropTextAngle] = d.textAngle
	props[PropLineSpacingFactor] = d.lineSpacingFactor
	props[PropExplicitValue] = d.explicitValue
}

func (d Dimension) setProperties(props Properties, kind Kind) (Dimension, error) {
	if err := readProperty(props, kind, PropDefinitionPoint, &d.definitionPoint); err != nil {
		return d, err
	}
	if err := readProperty(props, kind, PropMiddleOfText, &d.middleOfText); err != nil {
		return d, err
	}
	if err := readProperty(props, kind, PropTextAngle, &d.textAngle); err != nil {
		return d, err
	}
	if err := readProperty(props, kind, PropLineSpacingFactor, &d.lineSpacingFactor); err != nil {
		return d, err
	}
	if err := readProperty(props, kind, PropExplicitValue, &d.explicitValue); err != nil {
		return d, err
	}
	return d, nil
}

package models

import (
	"context"
	"encoding/json"
	"slices"
)

// ObjectType is the shape of input an annotator is asked to process.
type ObjectType string

const (
	ObjectTypeText  ObjectType = "text"
	ObjectTypeTable ObjectType = "table"
	ObjectTypeImage ObjectType = "image"
)

// ObjectTypes lists every object type the API understands, in the order used in error details.
var ObjectTypes = []ObjectType{ObjectTypeText, ObjectTypeImage, ObjectTypeTable}

// Valid reports whether t is one of the known object types.
func (t ObjectType) Valid() bool {
	return slices.Contains(ObjectTypes, t)
}

// Names is a requested set of entity, relationship or property names.
// A nil Names means "all supported"; a non-nil empty Names means "none".
type Names []string

// ExplicitlyEmpty reports whether the caller asked for no names at all.
func (n Names) ExplicitlyEmpty() bool {
	return n != nil && len(n) == 0
}

// Resolve intersects the requested names with the supported ones, keeping the order of
// the request. A nil request resolves to all supported names.
func (n Names) Resolve(supported []string) []string {
	if n == nil {
		return slices.Clone(supported)
	}
	resolved := make([]string, 0, len(n))
	for _, name := range n {
		if slices.Contains(supported, name) && !slices.Contains(resolved, name) {
			resolved = append(resolved, name)
		}
	}
	return resolved
}

// Entity is a typed span match within a text or a table cell. Range is a half-open
// character offset into the text (or the cell text for table entities).
type Entity struct {
	Type     string `json:"type"`
	Match    string `json:"match"`
	Original string `json:"original"`
	Range    [2]int `json:"range"`

	CellType        string  `json:"cell_type,omitempty"`
	Coords          [][]int `json:"coords,omitempty"`
	Prov            string  `json:"prov,omitempty"`
	SourceField     string  `json:"source_field,omitempty"`
	SourceFieldType string  `json:"source_field_type,omitempty"`
}

// EntityMap groups entities by entity name.
type EntityMap map[string][]Entity

// Relationship is the tabular result of one relationship annotator for one text.
// Rows reference entities as "<entity type>.<index in the entity map>".
type Relationship struct {
	Header []string `json:"header"`
	Data   [][]any  `json:"data"`
}

// RelationshipMap groups relationships by relationship name.
type RelationshipMap map[string]Relationship

// Property is a single classification value for a text.
type Property struct {
	Value string `json:"value"`
}

// PropertyMap groups properties by property name.
type PropertyMap map[string]Property

// TableCell is one cell of a table row.
type TableCell struct {
	Text  string    `json:"text"`
	Type  string    `json:"type"`
	Spans [][]int   `json:"spans" validate:"dive,len=2"`
	BBox  []float64 `json:"bbox,omitempty"`
}

// Table is a sequence of rows of cells.
type Table [][]TableCell

// Item is one element of a batch: exactly one of Text, Table or Image is meaningful,
// selected by Type.
type Item struct {
	Type  ObjectType
	Text  string
	Table Table
	Image json.RawMessage
}

func TextItem(text string) Item {
	return Item{Type: ObjectTypeText, Text: text}
}

func TableItem(table Table) Item {
	return Item{Type: ObjectTypeTable, Table: table}
}

func ImageItem(image json.RawMessage) Item {
	return Item{Type: ObjectTypeImage, Image: image}
}

// TextItems wraps a batch of texts.
func TextItems(texts []string) []Item {
	items := make([]Item, len(texts))
	for i, t := range texts {
		items[i] = TextItem(t)
	}
	return items
}

// EntityLabel describes one entity name.
type EntityLabel struct {
	Key         string `json:"key"`
	Description string `json:"description"`
}

// RelationshipLabel describes one relationship name and the entity columns it joins.
type RelationshipLabel struct {
	Key         string               `json:"key"`
	Description string               `json:"description"`
	Columns     []RelationshipColumn `json:"columns"`
}

type RelationshipColumn struct {
	Key      string   `json:"key"`
	Entities []string `json:"entities"`
}

// PropertyLabel describes one property name.
type PropertyLabel struct {
	Key         string `json:"key"`
	Description string `json:"description"`
}

// Labels is the self-description of an annotator.
type Labels struct {
	Entities      []EntityLabel       `json:"entities"`
	Relationships []RelationshipLabel `json:"relationships"`
	Properties    []PropertyLabel     `json:"properties"`
}

// AnnotatorMetadata identifies the deployment in features responses.
type AnnotatorMetadata struct {
	Name        string `json:"name"`
	Version     string `json:"version"`
	URL         string `json:"url"`
	Author      string `json:"author"`
	Description string `json:"description"`
}

// Annotator is implemented by every annotation backend. Implementations are read-only
// after construction and safe for concurrent use.
//
// Every batch method returns exactly one result per input, in input order. A failure on
// one item degrades to an empty result for that item and never fails the batch.
type Annotator interface {
	Key() AnnotatorKey
	SupportedObjectTypes() []ObjectType
	EntityNames() []string
	RelationshipNames() []string
	PropertyNames() []string
	Labels() Labels

	AnnotateEntities(
		ctx context.Context,
		objectType ObjectType,
		items []Item,
		names Names,
	) []EntityMap
	AnnotateRelationships(
		ctx context.Context,
		texts []string,
		entities []EntityMap,
		names Names,
	) []RelationshipMap
	AnnotateProperties(
		ctx context.Context,
		texts []string,
		entities []EntityMap,
		names Names,
	) []PropertyMap
}

// Supports reports whether the annotator declares support for objectType.
func Supports(a Annotator, objectType ObjectType) bool {
	return slices.Contains(a.SupportedObjectTypes(), objectType)
}

// Descriptor is an immutable snapshot of an annotator's declared capabilities.
type Descriptor struct {
	Key                  AnnotatorKey `json:"key"`
	SupportedObjectTypes []ObjectType `json:"supported_object_types"`
	EntityNames          []string     `json:"entity_names"`
	RelationshipNames    []string     `json:"relationship_names"`
	PropertyNames        []string     `json:"property_names"`
	Labels               Labels       `json:"labels"`
}

func DescriptorOf(a Annotator) Descriptor {
	return Descriptor{
		Key:                  a.Key(),
		SupportedObjectTypes: a.SupportedObjectTypes(),
		EntityNames:          a.EntityNames(),
		RelationshipNames:    a.RelationshipNames(),
		PropertyNames:        a.PropertyNames(),
		Labels:               a.Labels(),
	}
}

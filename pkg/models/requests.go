package models

import "encoding/json"

// Operation is one of the four top-level request keys.
type Operation string

const (
	OperationFindEntities      Operation = "find_entities"
	OperationFindRelationships Operation = "find_relationships"
	OperationFindProperties    Operation = "find_properties"
	OperationFeatures          Operation = "features"
)

// AnnotateRequest is the body of a POST to an annotator. Exactly one field is expected.
type AnnotateRequest struct {
	FindEntities      *FindEntitiesRequest      `json:"find_entities,omitempty"`
	FindRelationships *FindRelationshipsRequest `json:"find_relationships,omitempty"`
	FindProperties    *FindPropertiesRequest    `json:"find_properties,omitempty"`
	Features          *FeaturesRequest          `json:"features,omitempty"`
}

// Operations lists the operations present in the request, in declaration order.
func (r *AnnotateRequest) Operations() []Operation {
	var ops []Operation
	if r.FindEntities != nil {
		ops = append(ops, OperationFindEntities)
	}
	if r.FindRelationships != nil {
		ops = append(ops, OperationFindRelationships)
	}
	if r.FindProperties != nil {
		ops = append(ops, OperationFindProperties)
	}
	if r.Features != nil {
		ops = append(ops, OperationFeatures)
	}
	return ops
}

// ObjectPayload carries the polymorphic batch. The payload arrays are kept raw so their
// presence and shape can be validated against the object type.
type ObjectPayload struct {
	ObjectType ObjectType      `json:"object_type,omitempty"`
	Texts      json.RawMessage `json:"texts,omitempty"`
	Tables     json.RawMessage `json:"tables,omitempty"`
	Images     json.RawMessage `json:"images,omitempty"`
}

type FindEntitiesRequest struct {
	ObjectPayload
	EntityNames Names `json:"entity_names"`
}

type FindRelationshipsRequest struct {
	ObjectPayload
	Entities          []EntityMap `json:"entities"`
	RelationshipNames Names       `json:"relationship_names"`
}

type FindPropertiesRequest struct {
	ObjectPayload
	Entities      []EntityMap `json:"entities"`
	PropertyNames Names       `json:"property_names"`
}

// FeaturesRequest selects which parts of the annotator's self-description to return.
type FeaturesRequest struct {
	EntityNames       bool `json:"entity_names"`
	RelationshipNames bool `json:"relationship_names"`
	PropertyNames     bool `json:"property_names"`
	Labels            bool `json:"labels"`
}

type EntitiesResponse struct {
	Entities []EntityMap `json:"entities"`
}

type RelationshipsResponse struct {
	Relationships []RelationshipMap `json:"relationships"`
}

type PropertiesResponse struct {
	Properties []PropertyMap `json:"properties"`
}

// FeaturesResponse is the introspection result. Labels is an empty list when not
// requested, and a Labels object otherwise.
type FeaturesResponse struct {
	EntityNames          []string           `json:"entity_names"`
	RelationshipNames    []string           `json:"relationship_names"`
	PropertyNames        []string           `json:"property_names"`
	SupportedObjectTypes []ObjectType       `json:"supported_object_types"`
	Labels               any                `json:"labels"`
	Metadata             *AnnotatorMetadata `json:"metadata,omitempty"`
}

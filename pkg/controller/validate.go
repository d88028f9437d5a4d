package controller

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/getzep/nlp-annotator-api/pkg/models"
)

// Validate checks the payload against the annotator and returns the batch items.
// The object type defaults to text.
func (c *Controller) Validate(
	payload models.ObjectPayload,
	annotator models.Annotator,
) (models.ObjectType, []models.Item, error) {
	objectType := payload.ObjectType
	if objectType == "" {
		objectType = models.ObjectTypeText
	}

	if !objectType.Valid() {
		return "", nil, models.NewBadRequestError(
			"Invalid object type. Expected one of: %s",
			joinObjectTypes(models.ObjectTypes),
		)
	}
	if !models.Supports(annotator, objectType) {
		return "", nil, models.NewBadRequestError(
			"Unsupported object type for this annotator. Supports: %s",
			joinObjectTypes(annotator.SupportedObjectTypes()),
		)
	}

	switch objectType {
	case models.ObjectTypeText:
		texts, err := decodeTexts(payload.Texts)
		if err != nil {
			return "", nil, err
		}
		return objectType, models.TextItems(texts), nil

	case models.ObjectTypeTable:
		tables, err := c.decodeTables(payload.Tables)
		if err != nil {
			return "", nil, err
		}
		items := make([]models.Item, len(tables))
		for i, table := range tables {
			items[i] = models.TableItem(table)
		}
		return objectType, items, nil

	default:
		var images []json.RawMessage
		if !isArray(payload.Images) || json.Unmarshal(payload.Images, &images) != nil {
			return "", nil, models.NewBadRequestError("Invalid input: Missing 'images'")
		}
		items := make([]models.Item, len(images))
		for i, image := range images {
			items[i] = models.ImageItem(image)
		}
		return objectType, items, nil
	}
}

// validateTexts is Validate for the operations that only work on texts.
func (c *Controller) validateTexts(payload models.ObjectPayload, annotator models.Annotator) ([]string, error) {
	objectType, items, err := c.Validate(payload, annotator)
	if err != nil {
		return nil, err
	}
	if objectType != models.ObjectTypeText {
		return nil, models.NewBadRequestError(
			"Unsupported object type for this operation. Supports: %s",
			models.ObjectTypeText,
		)
	}
	texts := make([]string, len(items))
	for i, item := range items {
		texts[i] = item.Text
	}
	return texts, nil
}

func decodeTexts(raw json.RawMessage) ([]string, error) {
	if !isArray(raw) {
		return nil, models.NewBadRequestError("Invalid input: Missing 'texts'")
	}
	var texts []string
	if err := json.Unmarshal(raw, &texts); err != nil {
		return nil, models.NewBadRequestError("Invalid input: 'texts' must be a list of strings")
	}
	return texts, nil
}

func (c *Controller) decodeTables(raw json.RawMessage) ([]models.Table, error) {
	if !isArray(raw) {
		return nil, models.NewBadRequestError("Invalid input: Missing 'tables'")
	}
	var tables []models.Table
	if err := json.Unmarshal(raw, &tables); err != nil {
		return nil, models.NewBadRequestError("Invalid input: 'tables' must be a list of tables of cells")
	}
	for i, table := range tables {
		for _, row := range table {
			for _, cell := range row {
				if err := c.validate.Struct(cell); err != nil {
					return nil, models.NewBadRequestError("Invalid input: table %d: %v", i, err)
				}
			}
		}
	}
	return tables, nil
}

// isArray reports whether raw holds a JSON array. A missing field or null is not one.
func isArray(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '['
}

func joinObjectTypes(types []models.ObjectType) string {
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = string(t)
	}
	return strings.Join(names, ", ")
}

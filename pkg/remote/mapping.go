package remote

import (
	"slices"
	"strings"
	"unicode"

	"github.com/getzep/nlp-annotator-api/pkg/models"
)

// ICD10CodeAttribute is the concept attribute that yields an extra code entity.
const ICD10CodeAttribute = "icd10Code"

// KebabCase turns a provider concept type such as "umls.DiseaseOrSyndrome" into an entity
// name such as "umls-disease-or-syndrome".
func KebabCase(conceptType string) string {
	s := strings.ReplaceAll(conceptType, ".", "")
	var b strings.Builder
	for i, r := range s {
		if i > 0 && unicode.IsUpper(r) {
			b.WriteByte('-')
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

// analyzeRequest is the provider's request body.
type analyzeRequest struct {
	Unstructured []unstructuredText `json:"unstructured"`
}

type unstructuredText struct {
	Text string `json:"text"`
}

// analyzeResponse is the part of the provider's response the client reads.
type analyzeResponse struct {
	Unstructured []unstructuredResult `json:"unstructured"`
}

type unstructuredResult struct {
	Data *unstructuredData `json:"data"`
}

type unstructuredData struct {
	Concepts []concept `json:"concepts"`
}

type concept struct {
	Type          string  `json:"type"`
	CoveredText   string  `json:"coveredText"`
	PreferredName string  `json:"preferredName"`
	Begin         int     `json:"begin"`
	End           int     `json:"end"`
	ICD10Code     *string `json:"icd10Code"`
}

// toEntityMap converts the provider concepts of one text. Only the desired entity names
// appear in the result.
func toEntityMap(result unstructuredResult, desired []string) models.EntityMap {
	entityMap := models.EntityMap{}
	if result.Data == nil {
		return entityMap
	}

	codeType := KebabCase(ICD10CodeAttribute)
	wantCodes := slices.Contains(desired, codeType)

	for _, c := range result.Data.Concepts {
		entityType := KebabCase(c.Type)
		if !slices.Contains(desired, entityType) {
			continue
		}

		entityMap[entityType] = append(entityMap[entityType], models.Entity{
			Type:     entityType,
			Match:    c.PreferredName,
			Original: c.CoveredText,
			Range:    [2]int{c.Begin, c.End},
		})

		if c.ICD10Code == nil || !wantCodes {
			continue
		}
		code := models.Entity{
			Type:     codeType,
			Match:    *c.ICD10Code,
			Original: c.CoveredText,
			Range:    [2]int{c.Begin, c.End},
		}
		if !containsEntity(entityMap[codeType], code) {
			entityMap[codeType] = append(entityMap[codeType], code)
		}
	}

	return entityMap
}

func containsEntity(entities []models.Entity, e models.Entity) bool {
	return slices.ContainsFunc(entities, func(o models.Entity) bool {
		return o.Type == e.Type && o.Match == e.Match && o.Original == e.Original && o.Range == e.Range
	})
}

package annotators

import (
	"fmt"

	"github.com/jinzhu/copier"

	"github.com/getzep/nlp-annotator-api/pkg/models"
)

const tableProvenance = "data"

// cellProvenance holds the fields that turn a text entity into a table entity.
// Field names match models.Entity so copier can overlay them.
type cellProvenance struct {
	CellType        string
	Coords          [][]int
	Prov            string
	SourceField     string
	SourceFieldType string
}

// annotateTable annotates every cell text on its own and tags the resulting entities with
// the cell they were found in. Ranges stay relative to the cell text.
func annotateTable(
	table models.Table,
	annotateText func(text string) ([]models.Entity, error),
) ([]models.Entity, error) {
	var tableEntities []models.Entity
	for _, row := range table {
		for _, cell := range row {
			entities, err := annotateText(cell.Text)
			if err != nil {
				return nil, err
			}
			prov := cellProvenance{
				CellType:        cell.Type,
				Coords:          cell.Spans,
				Prov:            tableProvenance,
				SourceField:     tableProvenance,
				SourceFieldType: string(models.ObjectTypeTable),
			}
			for i := range entities {
				err := copier.CopyWithOption(&entities[i], &prov, copier.Option{DeepCopy: true})
				if err != nil {
					return nil, fmt.Errorf("failed to tag table entity: %w", err)
				}
				tableEntities = append(tableEntities, entities[i])
			}
		}
	}
	return tableEntities, nil
}

package repository

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/cartier55/coachbox-backend/internal/model"
)

// MaterialsRepo persists the single current-week programming document.
type MaterialsRepo struct{ DB *sql.DB }

func NewMaterialsRepo(db *sql.DB) *MaterialsRepo { return &MaterialsRepo{DB: db} }

// UpsertCurrentWeek writes the current week's materials under the constant
// identifier, creating the row on first use.
func (r *MaterialsRepo) UpsertCurrentWeek(ctx context.Context, m model.WeeklyMaterials) error {
	links, err := json.Marshal(m.VideoLinks)
	if err != nil {
		return err
	}
	_, err = r.DB.ExecContext(ctx, `
		INSERT INTO programming_materials (identifier, week_number, pdf_link, video_links, last_updated)
		VALUES (?,?,?,?,UTC_TIMESTAMP())
		ON DUPLICATE KEY UPDATE week_number=VALUES(week_number), pdf_link=VALUES(pdf_link),
			video_links=VALUES(video_links), last_updated=UTC_TIMESTAMP()`,
		model.CurrentWeekIdentifier, m.WeekNumber, m.PDFLink, links)
	return err
}

// GetCurrentWeek loads the current week's materials.
func (r *MaterialsRepo) GetCurrentWeek(ctx context.Context) (model.WeeklyMaterials, error) {
	var m model.WeeklyMaterials
	var links []byte
	err := r.DB.QueryRowContext(ctx,
		"SELECT identifier, week_number, pdf_link, video_links, last_updated FROM programming_materials WHERE identifier=?",
		model.CurrentWeekIdentifier).
		Scan(&m.Identifier, &m.WeekNumber, &m.PDFLink, &links, &m.LastUpdated)
	if err != nil {
		return model.WeeklyMaterials{}, err
	}
	if err := json.Unmarshal(links, &m.VideoLinks); err != nil {
		return model.WeeklyMaterials{}, err
	}
	return m, nil
}

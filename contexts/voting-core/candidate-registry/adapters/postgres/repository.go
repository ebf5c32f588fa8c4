package postgresadapter

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"ovation/contexts/voting-core/candidate-registry/domain/entities"
	domainerrors "ovation/contexts/voting-core/candidate-registry/domain/errors"
	"ovation/contexts/voting-core/candidate-registry/ports"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// Models lists the gorm models this adapter migrates at startup.
func Models() []any {
	return []any{&candidateModel{}}
}

func (r *Repository) GetCandidate(ctx context.Context, candidateID string) (entities.Candidate, error) {
	var row candidateModel
	err := r.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(candidateID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Candidate{}, domainerrors.ErrCandidateNotFound
		}
		return entities.Candidate{}, r.logError("registry_repo_get_candidate_failed", err,
			"candidate_id", strings.TrimSpace(candidateID),
		)
	}
	return row.toEntity(), nil
}

// IncrementVotes applies a single relative UPDATE so concurrent increments for
// the same candidate never lose writes.
func (r *Repository) IncrementVotes(ctx context.Context, candidateID string, by int64) (entities.Candidate, error) {
	candidateID = strings.TrimSpace(candidateID)
	update := r.db.WithContext(ctx).Model(&candidateModel{}).
		Where("id = ?", candidateID).
		Updates(map[string]any{
			"votes":      gorm.Expr("votes + ?", by),
			"updated_at": time.Now().UTC(),
		})
	if update.Error != nil {
		return entities.Candidate{}, r.logError("registry_repo_increment_votes_failed", update.Error,
			"candidate_id", candidateID,
			"by", by,
		)
	}
	if update.RowsAffected == 0 {
		return entities.Candidate{}, domainerrors.ErrCandidateNotFound
	}
	return r.GetCandidate(ctx, candidateID)
}

func (r *Repository) ListCandidates(ctx context.Context) ([]entities.Candidate, error) {
	var rows []candidateModel
	if err := r.db.WithContext(ctx).
		Order("votes DESC, name ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("registry_repo_list_candidates_failed", err)
	}
	items := make([]entities.Candidate, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) UpsertCandidate(ctx context.Context, candidate entities.Candidate) (entities.Candidate, bool, error) {
	row := candidateModelFromEntity(candidate)
	create := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "name"}, {Name: "club"}},
		DoUpdates: clause.Assignments(map[string]any{
			"image_path": row.ImagePath,
			"updated_at": row.UpdatedAt,
		}),
	}).Create(&row)
	if create.Error != nil {
		return entities.Candidate{}, false, r.logError("registry_repo_upsert_candidate_failed", create.Error,
			"name", row.Name,
			"club", row.Club,
		)
	}

	var stored candidateModel
	err := r.db.WithContext(ctx).
		Where("name = ?", row.Name).
		Where("club = ?", row.Club).
		First(&stored).
		Error
	if err != nil {
		return entities.Candidate{}, false, r.logError("registry_repo_upsert_reload_failed", err,
			"name", row.Name,
			"club", row.Club,
		)
	}
	created := stored.ID == row.ID
	return stored.toEntity(), created, nil
}

func (r *Repository) logError(event string, err error, attrs ...any) error {
	fields := make([]any, 0, len(attrs)+8)
	fields = append(fields,
		"event", event,
		"module", "voting-core/candidate-registry",
		"layer", "adapter",
		"error", err.Error(),
	)
	fields = append(fields, attrs...)
	r.logger.Error("candidate registry repository operation failed", fields...)
	return err
}

type candidateModel struct {
	ID        string    `gorm:"column:id;primaryKey"`
	Name      string    `gorm:"column:name;uniqueIndex:idx_candidates_name_club"`
	Club      string    `gorm:"column:club;uniqueIndex:idx_candidates_name_club"`
	ImagePath string    `gorm:"column:image_path"`
	Votes     int64     `gorm:"column:votes;not null;default:0"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (candidateModel) TableName() string {
	return "candidates"
}

func candidateModelFromEntity(candidate entities.Candidate) candidateModel {
	row := candidateModel{
		ID:        strings.TrimSpace(candidate.CandidateID),
		Name:      strings.TrimSpace(candidate.Name),
		Club:      strings.TrimSpace(candidate.Club),
		ImagePath: strings.TrimSpace(candidate.ImagePath),
		Votes:     candidate.Votes,
		CreatedAt: candidate.CreatedAt.UTC(),
		UpdatedAt: candidate.UpdatedAt.UTC(),
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	if row.UpdatedAt.IsZero() {
		row.UpdatedAt = row.CreatedAt
	}
	return row
}

func (m candidateModel) toEntity() entities.Candidate {
	return entities.Candidate{
		CandidateID: m.ID,
		Name:        m.Name,
		Club:        m.Club,
		ImagePath:   m.ImagePath,
		Votes:       m.Votes,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

var _ ports.CandidateRepository = (*Repository)(nil)

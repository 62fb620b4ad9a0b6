package service

import (
	"context"
	"errors"
	"log"

	"github.com/cartier55/coachbox-backend/internal/model"
)

// ErrMaterialsMissing is returned when the forwarded newsletter HTML does
// not contain both a PDF link and at least one weekday link. The sender
// retries the same payload, so the handler acknowledges these rather than
// erroring.
var ErrMaterialsMissing = errors.New("newsletter missing pdf or weekly links")

// NewsletterParser extracts the weekday→URL mapping and the workout PDF
// link from the raw newsletter HTML.
type NewsletterParser interface {
	WeeklyLinks(htmlBody string) map[string]string
	ClassPDFLink(htmlBody string) string
}

// LinkResolver resolves each weekday's tracking URL to its final video
// URL. Per-link failures substitute a sentinel value instead of failing
// the batch.
type LinkResolver interface {
	Resolve(ctx context.Context, links map[string]string) map[string]string
}

// MaterialsStore persists the current week's programming document.
type MaterialsStore interface {
	UpsertCurrentWeek(ctx context.Context, m model.WeeklyMaterials) error
	GetCurrentWeek(ctx context.Context) (model.WeeklyMaterials, error)
}

// Notifier publishes out-of-band notifications about material updates.
// Implementations are best-effort; failures are logged, never returned.
type Notifier interface {
	ProgrammingUpdated(ctx context.Context, weekNumber int) error
}

// MaterialsService ingests the externally published weekly programming.
type MaterialsService struct {
	parser   NewsletterParser
	resolver LinkResolver
	store    MaterialsStore
	notifier Notifier
}

func NewMaterialsService(parser NewsletterParser, resolver LinkResolver, store MaterialsStore, notifier Notifier) *MaterialsService {
	return &MaterialsService{parser: parser, resolver: resolver, store: store, notifier: notifier}
}

// UpdateFromNewsletter parses the forwarded HTML, resolves the per-day
// video links and upserts the current-week document.
func (s *MaterialsService) UpdateFromNewsletter(ctx context.Context, htmlBody string, weekNumber int) error {
	weekly := s.parser.WeeklyLinks(htmlBody)
	pdf := s.parser.ClassPDFLink(htmlBody)
	if pdf == "" || len(weekly) == 0 {
		return ErrMaterialsMissing
	}
	log.Printf("materials: found pdf link and %d weekly links", len(weekly))

	resolved := s.resolver.Resolve(ctx, weekly)

	err := s.store.UpsertCurrentWeek(ctx, model.WeeklyMaterials{
		Identifier: model.CurrentWeekIdentifier,
		WeekNumber: weekNumber,
		PDFLink:    pdf,
		VideoLinks: resolved,
	})
	if err != nil {
		return err
	}
	if s.notifier != nil {
		if err := s.notifier.ProgrammingUpdated(ctx, weekNumber); err != nil {
			log.Printf("materials: update notification failed: %v", err)
		}
	}
	return nil
}

// CurrentWeek returns the stored current-week document.
func (s *MaterialsService) CurrentWeek(ctx context.Context) (model.WeeklyMaterials, error) {
	return s.store.GetCurrentWeek(ctx)
}

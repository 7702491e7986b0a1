package prospect

import (
	"context"
	"fmt"

	domain "lending-backoffice/internal/domain/prospect"
	"lending-backoffice/internal/session"
	"lending-backoffice/pkg/id"
)

// SetDocumentStatus changes one document's status and re-evaluates the stage
// gate, since an approval can complete the stage (or the whole workflow).
func (u *Usecase) SetDocumentStatus(ctx context.Context, sess *session.Session, prospectID string, stageID int, docID string, status domain.DocumentStatus) (*domain.Prospect, error) {
	switch status {
	case domain.DocMissing, domain.DocReadyForReview, domain.DocApproved, domain.DocRejected:
	default:
		return nil, fmt.Errorf("%w: unknown document status %q", domain.ErrValidation, status)
	}
	return u.mutate(ctx, sess, prospectID, func(p *domain.Prospect) error {
		d, err := locateDocument(p, stageID, docID)
		if err != nil {
			return err
		}
		d.Status = status
		domain.CheckAndAdvance(p, u.orig, u.now())
		return nil
	})
}

type ClosingFlags struct {
	Sent   *bool
	Signed *bool
	Filled *bool
}

// SetClosingFlags toggles the sent/signed/filled booleans on a Closing-stage
// general document. The document's status is derived, never set directly, and
// the gate is re-evaluated because the third flag can flip it to approved.
func (u *Usecase) SetClosingFlags(ctx context.Context, sess *session.Session, prospectID string, stageID int, docID string, flags ClosingFlags) (*domain.Prospect, error) {
	return u.mutate(ctx, sess, prospectID, func(p *domain.Prospect) error {
		st := p.StageByID(stageID)
		if st == nil {
			return fmt.Errorf("%w: unknown stage %d", domain.ErrValidation, stageID)
		}
		if st.Name != domain.StageClosing {
			return fmt.Errorf("%w: sent/signed/filled apply to Closing documents only", domain.ErrValidation)
		}
		d := st.FindDocument(docID)
		if d == nil {
			return fmt.Errorf("%w: unknown document %s", domain.ErrValidation, docID)
		}
		if flags.Sent != nil {
			d.Sent = *flags.Sent
		}
		if flags.Signed != nil {
			d.Signed = *flags.Signed
		}
		if flags.Filled != nil {
			d.Filled = *flags.Filled
		}
		domain.DeriveClosingStatus(d)
		domain.CheckAndAdvance(p, u.orig, u.now())
		return nil
	})
}

type AddDocumentInput struct {
	StageID  int
	Bucket   string
	Name     string
	Optional bool
	Category domain.ClosingCategory
}

// AddCustomDocument appends a user-defined document to a stage bucket.
func (u *Usecase) AddCustomDocument(ctx context.Context, sess *session.Session, prospectID string, in AddDocumentInput) (*domain.Prospect, error) {
	if in.Name == "" {
		return nil, fmt.Errorf("%w: document name is required", domain.ErrValidation)
	}
	return u.mutate(ctx, sess, prospectID, func(p *domain.Prospect) error {
		st := p.StageByID(in.StageID)
		if st == nil {
			return fmt.Errorf("%w: unknown stage %d", domain.ErrValidation, in.StageID)
		}
		bucket := st.Documents.Bucket(in.Bucket)
		if bucket == nil {
			return fmt.Errorf("%w: unknown bucket %q", domain.ErrValidation, in.Bucket)
		}
		d := domain.Document{
			ID:         id.NewID32(),
			Name:       in.Name,
			Status:     domain.DocMissing,
			IsCustom:   true,
			IsOptional: in.Optional,
		}
		if st.Name == domain.StageClosing && in.Bucket == "general" {
			d.Category = in.Category
		}
		*bucket = append(*bucket, d)
		return nil
	})
}

// RemoveCustomDocument deletes a user-added document. Template-defined
// documents are fixed and cannot be removed.
func (u *Usecase) RemoveCustomDocument(ctx context.Context, sess *session.Session, prospectID string, stageID int, docID string) (*domain.Prospect, error) {
	return u.mutate(ctx, sess, prospectID, func(p *domain.Prospect) error {
		st := p.StageByID(stageID)
		if st == nil {
			return fmt.Errorf("%w: unknown stage %d", domain.ErrValidation, stageID)
		}
		for _, key := range []string{"individual", "company", "property", "general", "closing_final_approval"} {
			bucket := st.Documents.Bucket(key)
			for i := range *bucket {
				if (*bucket)[i].ID != docID {
					continue
				}
				if !(*bucket)[i].IsCustom {
					return fmt.Errorf("%w: document %s is template-defined", domain.ErrValidation, docID)
				}
				*bucket = append((*bucket)[:i], (*bucket)[i+1:]...)
				// removing a blocker may open the gate
				domain.CheckAndAdvance(p, u.orig, u.now())
				return nil
			}
		}
		return fmt.Errorf("%w: unknown document %s", domain.ErrValidation, docID)
	})
}

// AttachDocumentFile records the uploaded blob URL on a document and moves a
// missing document to ready_for_review.
func (u *Usecase) AttachDocumentFile(ctx context.Context, sess *session.Session, prospectID string, stageID int, docID, fileURL string) (*domain.Prospect, error) {
	if fileURL == "" {
		return nil, fmt.Errorf("%w: file url is required", domain.ErrValidation)
	}
	return u.mutate(ctx, sess, prospectID, func(p *domain.Prospect) error {
		d, err := locateDocument(p, stageID, docID)
		if err != nil {
			return err
		}
		d.FileURL = fileURL
		if d.Status == domain.DocMissing {
			d.Status = domain.DocReadyForReview
		}
		return nil
	})
}

// Reject parks the prospect, remembering the stage it died at.
func (u *Usecase) Reject(ctx context.Context, sess *session.Session, prospectID string) (*domain.Prospect, error) {
	return u.mutate(ctx, sess, prospectID, func(p *domain.Prospect) error {
		if p.Status != domain.StatusInProgress {
			return fmt.Errorf("%w: only an in-progress prospect can be rejected", domain.ErrValidation)
		}
		if st := p.ActiveStage(); st != nil {
			n := st.ID
			p.RejectedAtStage = &n
		}
		p.Status = domain.StatusRejected
		return nil
	})
}

// Reopen returns a rejected prospect to in_progress without resetting any
// stage progress.
func (u *Usecase) Reopen(ctx context.Context, sess *session.Session, prospectID string) (*domain.Prospect, error) {
	return u.mutate(ctx, sess, prospectID, func(p *domain.Prospect) error {
		if p.Status != domain.StatusRejected {
			return fmt.Errorf("%w: only a rejected prospect can be reopened", domain.ErrValidation)
		}
		p.Status = domain.StatusInProgress
		p.RejectedAtStage = nil
		return nil
	})
}

func locateDocument(p *domain.Prospect, stageID int, docID string) (*domain.Document, error) {
	st := p.StageByID(stageID)
	if st == nil {
		return nil, fmt.Errorf("%w: unknown stage %d", domain.ErrValidation, stageID)
	}
	d := st.FindDocument(docID)
	if d == nil {
		return nil, fmt.Errorf("%w: unknown document %s", domain.ErrValidation, docID)
	}
	return d, nil
}

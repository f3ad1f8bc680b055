package records

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// List holds one loaded collection together with the selection dialog and
// the delete notice.
type List[T Record] struct {
	desc   *Descriptor[T]
	api    API
	logger *slog.Logger
	after  AfterFunc

	mu        sync.Mutex
	records   []T
	dialog    Dialog[T]
	notice    Notice
	timer     Timer
	noticeSeq uint64
}

// NewList constructs an empty list.
func NewList[T Record](desc *Descriptor[T], api API, logger *slog.Logger) *List[T] {
	if logger == nil {
		logger = slog.Default()
	}
	return &List[T]{
		desc:   desc,
		api:    api,
		logger: logger.With(slog.String("entity", desc.Slug)),
		after:  systemAfterFunc,
	}
}

// WithScheduler replaces the timer used by the notice.
func (l *List[T]) WithScheduler(after AfterFunc) *List[T] {
	if after != nil {
		l.after = after
	}
	return l
}

// Load fetches the whole collection. On failure the list is left empty and
// the error is returned.
func (l *List[T]) Load(ctx context.Context) error {
	var out []T
	if err := l.api.Get(ctx, l.desc.Endpoint(), &out); err != nil {
		l.logger.Error("load records", slog.Any("error", err))
		l.mu.Lock()
		l.records = nil
		l.mu.Unlock()
		return fmt.Errorf("load %s: %w", l.desc.Slug, err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	l.mu.Lock()
	l.records = out
	l.mu.Unlock()
	return nil
}

// Records returns a copy of the loaded records.
func (l *List[T]) Records() []T {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]T(nil), l.records...)
}

func (l *List[T]) findLocked(id ID) (T, bool) {
	for _, rec := range l.records {
		if rec.RecordID() == id {
			return rec, true
		}
	}
	var zero T
	return zero, false
}

// AskDelete selects id and opens the delete confirmation.
func (l *List[T]) AskDelete(id ID) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	rec, ok := l.findLocked(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownRecord, id)
	}
	l.dialog = ConfirmDialog(rec)
	return nil
}

// ShowInfo selects id and opens the info dialog.
func (l *List[T]) ShowInfo(id ID) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	rec, ok := l.findLocked(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownRecord, id)
	}
	l.dialog = InfoDialog(rec)
	return nil
}

// CloseDialog clears the selection.
func (l *List[T]) CloseDialog() {
	l.mu.Lock()
	l.dialog = NoDialog[T]()
	l.mu.Unlock()
}

func (l *List[T]) Dialog() Dialog[T] {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.dialog
}

// ConfirmDelete deletes the selected record. On success the record is
// filtered out locally and the notice shows for NoticeDuration; the dialog
// closes unless it was switched to another selection meanwhile. On failure
// the dialog stays open.
func (l *List[T]) ConfirmDelete(ctx context.Context) error {
	l.mu.Lock()
	rec, ok := l.dialog.Record()
	if !ok || l.dialog.Kind() != DialogConfirm {
		l.mu.Unlock()
		return ErrNoSelection
	}
	l.mu.Unlock()

	id := rec.RecordID()
	if err := l.api.Delete(ctx, l.desc.ItemEndpoint(id)); err != nil {
		l.logger.Error("delete record", slog.String("id", id.String()), slog.Any("error", err))
		return fmt.Errorf("delete %s %s: %w", l.desc.Slug, id, err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	kept := l.records[:0]
	for _, r := range l.records {
		if r.RecordID() != id {
			kept = append(kept, r)
		}
	}
	l.records = kept
	if current, ok := l.dialog.Record(); ok && l.dialog.Kind() == DialogConfirm && current.RecordID() == id {
		l.dialog = NoDialog[T]()
	}
	l.showNoticeLocked(l.desc.DeletedMessage())
	return nil
}

func (l *List[T]) showNoticeLocked(msg string) {
	if l.timer != nil {
		l.timer.Stop()
	}
	l.noticeSeq++
	seq := l.noticeSeq
	l.notice = Notice{Visible: true, Message: msg}
	l.timer = l.after(NoticeDuration, func() { l.expireNotice(seq) })
}

func (l *List[T]) expireNotice(seq uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if seq != l.noticeSeq {
		return
	}
	l.notice = Notice{}
	l.timer = nil
}

func (l *List[T]) Notice() Notice {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.notice
}

// DismissNotice hides the notice now and cancels its timer.
func (l *List[T]) DismissNotice() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.timer != nil {
		l.timer.Stop()
		l.timer = nil
	}
	l.noticeSeq++
	l.notice = Notice{}
}

// Close releases the notice timer without changing what is visible.
func (l *List[T]) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.timer != nil {
		l.timer.Stop()
		l.timer = nil
	}
}

func (l *List[T]) Descriptor() *Descriptor[T] {
	return l.desc
}

package exchange

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/odvcencio/edigeo/pkg/block"
	"github.com/odvcencio/edigeo/pkg/bundle"
)

// ErrAnomaly matches any *AnomalyError.
var ErrAnomaly = errors.New("segmentation anomaly")

// AnomalyError is returned in strict mode for a member whose segmentation
// reported anomalies.
type AnomalyError struct {
	Member    string
	Anomalies []block.Anomaly
}

func (e *AnomalyError) Error() string {
	return fmt.Sprintf("%s: %d segmentation anomaly(ies), first: %s", e.Member, len(e.Anomalies), e.Anomalies[0])
}

func (e *AnomalyError) Is(target error) bool {
	return target == ErrAnomaly
}

// MemberResult is the decoded form of one member file.
type MemberResult struct {
	Member bundle.Member
	// Name is the file name the member was read from.
	Name         string
	Segmentation block.Segmentation
	// Transcode is non-nil when some bytes could not be decoded and were
	// replaced by U+FFFD.
	Transcode error
}

// Exchange is a decoded lot. Members are in canonical member order.
type Exchange struct {
	Members []MemberResult
}

// Member returns the result for m.
func (x *Exchange) Member(m bundle.Member) (MemberResult, bool) {
	for _, r := range x.Members {
		if r.Member == m {
			return r, true
		}
	}
	return MemberResult{}, false
}

// AnomalyCount sums anomalies over every member.
func (x *Exchange) AnomalyCount() int {
	n := 0
	for _, r := range x.Members {
		n += len(r.Segmentation.Anomalies)
	}
	return n
}

// Decoder runs transcode, parse and segmentation for every member of a
// bundle.
type Decoder struct {
	settings settings
	logger   *zap.Logger
}

// NewDecoder validates cfg. A nil logger discards output.
func NewDecoder(cfg Config, logger *zap.Logger) (*Decoder, error) {
	s, err := cfg.resolve()
	if err != nil {
		return nil, fmt.Errorf("new decoder: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Decoder{settings: s, logger: logger}, nil
}

// DecodePath loads the lot at path and decodes it.
func (d *Decoder) DecodePath(ctx context.Context, path string) (*Exchange, error) {
	b, err := bundle.LoadPath(ctx, path)
	if err != nil {
		return nil, err
	}
	d.logger.Debug("bundle loaded", zap.String("path", path), zap.Int("members", len(b.Present())))
	return d.Decode(ctx, b)
}

// Decode decodes the selected members concurrently. Results and errors are
// reported in canonical member order regardless of completion order; every
// failing member contributes its own error.
func (d *Decoder) Decode(ctx context.Context, b *bundle.Bundle) (*Exchange, error) {
	var todo []bundle.Member
	for _, m := range d.settings.members {
		if b.Has(m) {
			todo = append(todo, m)
		}
	}

	results := make([]MemberResult, len(todo))
	errs := make([]error, len(todo))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.settings.workers)
	for i, m := range todo {
		i, m := i, m
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i], errs[i] = d.decodeMember(b, m)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return &Exchange{Members: results}, nil
}

func (d *Decoder) decodeMember(b *bundle.Bundle, m bundle.Member) (MemberResult, error) {
	name := b.Name(m)
	log := d.logger.With(zap.Stringer("member", m), zap.String("file", name))
	log.Debug("decoding member", zap.Int("bytes", len(b.Data(m))))

	text, terr := bundle.Transcode(b.Data(m), d.settings.encoding)
	if terr != nil {
		if !errors.Is(terr, bundle.ErrTranscode) || d.settings.strict {
			return MemberResult{}, fmt.Errorf("%s: %w", name, terr)
		}
		log.Warn("undecodable bytes replaced", zap.Error(terr))
	}

	table, err := block.TableFor(block.Kind(m.FileKind()))
	if err != nil {
		return MemberResult{}, fmt.Errorf("%s: %w", name, err)
	}
	seg, err := block.SegmentText(table, name, text)
	if err != nil {
		return MemberResult{}, err
	}
	for _, a := range seg.Anomalies {
		log.Warn("segmentation anomaly",
			zap.String("kind", string(a.Kind)),
			zap.Int("line", a.Line),
			zap.String("detail", a.String()))
	}
	if d.settings.strict && len(seg.Anomalies) > 0 {
		return MemberResult{}, &AnomalyError{Member: name, Anomalies: seg.Anomalies}
	}

	log.Debug("member decoded", zap.Int("blocks", len(seg.Blocks)), zap.Int("records", seg.Len()))
	return MemberResult{Member: m, Name: name, Segmentation: seg, Transcode: terr}, nil
}

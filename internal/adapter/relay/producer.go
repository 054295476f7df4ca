package relay

import (
	"context"
	"io"

	"github.com/loyaltyware/walletcore/internal/domain"
)

// fetchProducer performs the staged request on first Next and then
// replays the relay's ordered stage array one element at a time. The
// relay guarantees ordering; the producer imposes none of its own.
type fetchProducer struct {
	fetch  func(ctx context.Context) ([]domain.OperationStage, error)
	stages []domain.OperationStage
	pos    int
	done   bool
}

func newFetchProducer(fetch func(ctx context.Context) ([]domain.OperationStage, error)) *fetchProducer {
	return &fetchProducer{fetch: fetch}
}

// Next implements domain.StageProducer.
func (p *fetchProducer) Next(ctx context.Context) (domain.OperationStage, error) {
	if !p.done {
		stages, err := p.fetch(ctx)
		if err != nil {
			return domain.OperationStage{}, err
		}
		p.stages = stages
		p.done = true
	}
	if p.pos >= len(p.stages) {
		return domain.OperationStage{}, io.EOF
	}
	stage := p.stages[p.pos]
	p.pos++
	return stage, nil
}

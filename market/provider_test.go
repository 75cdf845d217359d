package market

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/optsim/errs"
)

type fakeProvider struct {
	quote Quote
	err   error
	calls int
}

func (f *fakeProvider) Fetch(ctx context.Context, symbol string) (Quote, error) {
	f.calls++
	if f.err != nil {
		return Quote{}, f.err
	}
	q := f.quote
	q.Symbol = symbol
	return q, nil
}

func TestResolveManual(t *testing.T) {
	p := &fakeProvider{}
	manual := State{Spot: 700, Rate: 0.015, Volatility: 0.02}

	got, q, err := Resolve(context.Background(), p, "", manual)
	require.NoError(t, err)
	assert.Equal(t, manual, got)
	assert.Nil(t, q)
	assert.Equal(t, 0, p.calls)
}

func TestResolveTicker(t *testing.T) {
	p := &fakeProvider{quote: Quote{LastPrice: 22000, Volatility: 0.18}}

	got, q, err := Resolve(context.Background(), p, "^TWII", State{Spot: 1, Rate: 0.015, Volatility: 9})
	require.NoError(t, err)
	require.NotNil(t, q)
	assert.Equal(t, "^TWII", q.Symbol)
	assert.Equal(t, State{Spot: 22000, Rate: 0.015, Volatility: 0.18}, got)
}

func TestResolveUpstreamFailure(t *testing.T) {
	p := &fakeProvider{err: fmt.Errorf("%w: timeout", errs.ErrUpstreamUnavailable)}

	_, _, err := Resolve(context.Background(), p, "^TWII", State{})
	assert.ErrorIs(t, err, errs.ErrUpstreamUnavailable)

	_, _, err = Resolve(context.Background(), nil, "^TWII", State{})
	assert.True(t, errors.Is(err, errs.ErrUpstreamUnavailable))
}

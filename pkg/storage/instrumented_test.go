package storage

import (
	"context"
	"testing"

	opentracing "github.com/opentracing/opentracing-go"
	"github.com/opentracing/opentracing-go/mocktracer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestInstrumentedStorePassthrough(t *testing.T) {
	ctx := context.Background()
	backend := newCountingStore()
	tr := mocktracer.New()

	st := Instrument(tr, zap.NewNop(), backend)
	assert.Equal(t, "counting", st.String())

	require.NoError(t, st.Put(ctx, "k", strReader("payload")))

	has, err := st.Has(ctx, "k")
	require.NoError(t, err)
	assert.True(t, has)

	b, err := ReadAll(ctx, st, "k")
	require.NoError(t, err)
	assert.Equal(t, "payload", string(b))

	rng, err := st.GetRange(ctx, "k", 0, 3)
	require.NoError(t, err)
	assert.Equal(t, "pay", string(rng))

	keys, err := st.KeysPrefix(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []string{"k"}, keys)

	require.NoError(t, st.Delete(ctx, "k"))
	require.NoError(t, st.Clear(ctx))

	spans := tr.FinishedSpans()
	require.Len(t, spans, 7)
	assert.Equal(t, "storage.counting.Put", spans[0].OperationName)
	assert.Equal(t, "storage.counting.Has", spans[1].OperationName)
	assert.Equal(t, "storage.counting.Get", spans[2].OperationName)
	assert.Equal(t, "storage.counting.GetRange", spans[3].OperationName)
	assert.Equal(t, "storage.counting.KeysPrefix", spans[4].OperationName)
	assert.Equal(t, "storage.counting.Delete", spans[5].OperationName)
	assert.Equal(t, "storage.counting.Clear", spans[6].OperationName)
}

func TestInstrumentedStoreChildSpans(t *testing.T) {
	ctx := context.Background()
	backend := newCountingStore()
	tr := mocktracer.New()
	st := Instrument(tr, nil, backend)

	parent := tr.StartSpan("engine.ReadRegion")
	ctx = opentracing.ContextWithSpan(ctx, parent)

	_, _ = st.Has(ctx, "k")
	parent.Finish()

	spans := tr.FinishedSpans()
	require.Len(t, spans, 2)
	child := spans[0]
	root := spans[1]
	assert.Equal(t, root.SpanContext.SpanID, child.ParentID)
}

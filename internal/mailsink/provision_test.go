package mailsink

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shineum/mailsink-lite/internal/email"
)

func TestProvision_DistinctFoldersInOrder(t *testing.T) {
	t.Parallel()

	store := &memStorage{}
	to := email.Recipients{
		email.NewAddress("b@example.com"),
		{Name: "A", Address: "a@example.com"},
		email.NewAddress("b@example.com"),
	}

	got, err := provision(context.Background(), store, "./out", to)
	require.NoError(t, err)

	assert.Equal(t, to, got)
	assert.Equal(t, []string{"out/b@example.com", "out/a@example.com"}, store.dirs)
}

func TestProvision_Failure(t *testing.T) {
	t.Parallel()

	denied := errors.New("permission denied")
	store := &memStorage{failMkdir: "out/a@example.com", err: denied}

	_, err := provision(context.Background(), store, "out", email.To("a@example.com"))
	assert.True(t, email.HasCode(err, email.CodeIOFailure))
	assert.ErrorIs(t, err, denied)
}

package sqlite

import (
	"path/filepath"
	"testing"

	"github.com/isdelr/quill-be/internal/repository"
	"github.com/isdelr/quill-be/internal/repository/repotest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteStore(t *testing.T) {
	repotest.Run(t, func(t *testing.T) *repository.Store {
		store, err := Open(filepath.Join(t.TempDir(), "quill.db"))
		require.NoError(t, err)
		t.Cleanup(func() { store.Close() })
		return store
	})
}

func TestUniqueColumn(t *testing.T) {
	tests := []struct {
		msg  string
		want string
	}{
		{"constraint failed: UNIQUE constraint failed: users.email (2067)", "email"},
		{"constraint failed: UNIQUE constraint failed: articles.slug (1555)", "slug"},
		{"constraint failed: UNIQUE constraint failed: follows.follower_id, follows.followed_id (1555)", "follower_id"},
		{"something else", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, uniqueColumn(tt.msg), tt.msg)
	}
}

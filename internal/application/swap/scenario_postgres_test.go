//go:build integration

package swap_test

import (
	"testing"

	"github.com/phoneshop/backend/internal/testutil"
	"gorm.io/gorm"
)

// Run every scenario on the schema built by migrations/, with its checks and
// foreign keys, instead of the one derived from the gorm models.
func init() {
	openStore = func(t testing.TB) *gorm.DB { return testutil.NewPostgresDB(t) }
}

package repo_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"

	"github.com/tertiusintegrity/fieldforce-api/internal/domain"
	"github.com/tertiusintegrity/fieldforce-api/testutil"
)

// newTestTx opens a transaction against the test database. All repos in a
// test share the transaction, and it is rolled back when the test finishes,
// giving free per-test isolation — no cleanup SQL needed.
//
// Requires TEST_DATABASE_URL to be set; migrations are applied by TestMain.
func newTestTx(t *testing.T) pgx.Tx {
	t.Helper()
	pool := testutil.NewPool(t)

	tx, err := pool.Begin(context.Background())
	require.NoError(t, err, "begin transaction")

	t.Cleanup(func() {
		_ = tx.Rollback(context.Background())
	})

	return tx
}

// seedUser inserts a user row directly and returns its generated ID.
func seedUser(t *testing.T, tx pgx.Tx, email string, role domain.Role, hq *domain.GeoPoint) uuid.UUID {
	t.Helper()

	var lat, lng *float64
	if hq != nil {
		lat, lng = &hq.Lat, &hq.Lng
	}

	var id uuid.UUID
	err := tx.QueryRow(context.Background(), `
		INSERT INTO users (email, display_name, role, password_hash, hq_lat, hq_lng)
		VALUES ($1, $2, $3, 'x', $4, $5)
		RETURNING id`,
		email, "User "+email, string(role), lat, lng,
	).Scan(&id)
	require.NoError(t, err, "seed user")
	return id
}

// seedTerritory inserts a territory and optionally assigns it to a user.
func seedTerritory(t *testing.T, tx pgx.Tx, name string, userIDs ...uuid.UUID) uuid.UUID {
	t.Helper()

	var id uuid.UUID
	err := tx.QueryRow(context.Background(),
		`INSERT INTO territories (name) VALUES ($1) RETURNING id`, name,
	).Scan(&id)
	require.NoError(t, err, "seed territory")

	for _, userID := range userIDs {
		_, err := tx.Exec(context.Background(),
			`INSERT INTO user_territories (user_id, territory_id) VALUES ($1, $2)`, userID, id)
		require.NoError(t, err, "assign territory")
	}
	return id
}

// seedCustomer inserts a customer into a territory. A nil location leaves the
// coordinate columns NULL.
func seedCustomer(t *testing.T, tx pgx.Tx, territoryID uuid.UUID, name string, loc *domain.GeoPoint) uuid.UUID {
	t.Helper()

	var lat, lng *float64
	if loc != nil {
		lat, lng = &loc.Lat, &loc.Lng
	}

	var id uuid.UUID
	err := tx.QueryRow(context.Background(), `
		INSERT INTO customers (territory_id, name, type, category, lat, lng)
		VALUES ($1, $2, 'DOCTOR', 'A', $3, $4)
		RETURNING id`,
		territoryID, name, lat, lng,
	).Scan(&id)
	require.NoError(t, err, "seed customer")
	return id
}

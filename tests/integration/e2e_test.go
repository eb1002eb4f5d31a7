//go:build integration

package integration

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/wrapperspb"

	grpcadapter "github.com/simaogato/wealthflow-valuation/internal/adapter/grpc"
	"github.com/simaogato/wealthflow-valuation/internal/adapter/repository/postgres"
)

var (
	db         *postgres.DB
	grpcClient *grpcadapter.ValuationServiceClient
	grpcConn   *grpc.ClientConn
	ownerID    uuid.UUID
)

// TestMain sets up the test environment against a running server
func TestMain(m *testing.M) {
	ctx := context.Background()

	// 1. Connect to Database
	var err error
	db, err = postgres.NewDB(ctx, getDBConnectionString(), 2)
	if err != nil {
		panic(fmt.Sprintf("Failed to connect to database: %v", err))
	}

	// 2. Connect to gRPC Server
	grpcConn, err = grpc.NewClient(getGRPCAddress(), grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		panic(fmt.Sprintf("Failed to connect to gRPC server: %v", err))
	}

	grpcClient = grpcadapter.NewValuationServiceClient(grpcConn)

	// 3. Seed a fresh owner with two accounts
	ownerID = uuid.New()
	if err := seedOwner(ctx, db, ownerID); err != nil {
		panic(fmt.Sprintf("Failed to seed accounts: %v", err))
	}

	code := m.Run()

	_, _ = db.ExecContext(ctx, `DELETE FROM accounts WHERE owner_id = $1`, ownerID)
	_ = grpcConn.Close()
	_ = db.Close()
	os.Exit(code)
}

// seedOwner inserts a USD brokerage account and an ILS account holding cash in both currencies
func seedOwner(ctx context.Context, db *postgres.DB, owner uuid.UUID) error {
	ibkr, leumi := uuid.New(), uuid.New()

	statements := []struct {
		query string
		args  []interface{}
	}{
		{`INSERT INTO accounts (id, owner_id, name, currency) VALUES ($1, $2, 'IBKR', 'USD')`, []interface{}{ibkr, owner}},
		{`INSERT INTO accounts (id, owner_id, name, currency) VALUES ($1, $2, 'Leumi Trade', 'ILS')`, []interface{}{leumi, owner}},
		{`INSERT INTO holdings (id, account_id, symbol, quantity, avg_cost_basis, position) VALUES ($1, $2, 'AAPL', 10, 150, 0)`, []interface{}{uuid.New(), ibkr}},
		{`INSERT INTO holdings (id, account_id, symbol, quantity, avg_cost_basis, position) VALUES ($1, $2, 'NO-SUCH-SYMBOL-XYZ', 2, 50, 1)`, []interface{}{uuid.New(), ibkr}},
		{`INSERT INTO holdings (id, account_id, symbol, quantity, avg_cost_basis, position) VALUES ($1, $2, 'AAPL', 5, 600, 0)`, []interface{}{uuid.New(), leumi}},
		{`INSERT INTO cash_balances (id, account_id, currency, amount) VALUES ($1, $2, 'ILS', 1000)`, []interface{}{uuid.New(), leumi}},
		{`INSERT INTO cash_balances (id, account_id, currency, amount) VALUES ($1, $2, 'USD', 10)`, []interface{}{uuid.New(), leumi}},
	}

	for _, s := range statements {
		if _, err := db.ExecContext(ctx, s.query, s.args...); err != nil {
			return fmt.Errorf("failed to seed: %w", err)
		}
	}
	return nil
}

// getAuthContext returns a context carrying the API token
func getAuthContext() context.Context {
	token := os.Getenv("API_TOKEN")
	if token == "" {
		token = "dev-token"
	}
	return metadata.AppendToOutgoingContext(context.Background(), "authorization", token)
}

// getDBConnectionString builds the connection string from environment or defaults
func getDBConnectionString() string {
	if connStr := os.Getenv("DB_CONN_STR"); connStr != "" {
		return connStr
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		envOr("DB_HOST", "localhost"),
		envOr("DB_PORT", "5432"),
		envOr("DB_USER", "postgres"),
		envOr("DB_PASSWORD", "postgres"),
		envOr("DB_NAME", "wealthflow"))
}

// getGRPCAddress returns the gRPC server address from environment or defaults
func getGRPCAddress() string {
	return envOr("GRPC_ADDRESS", "localhost:8080")
}

func getHTTPAddress() string {
	return envOr("HTTP_ADDRESS", "http://localhost:8081")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func TestValuateOwner_EndToEnd(t *testing.T) {
	resp, err := grpcClient.Valuate(getAuthContext(), wrapperspb.String(ownerID.String()))
	require.NoError(t, err)

	fields := resp.GetFields()
	accounts := fields["accounts"].GetListValue().GetValues()
	require.Len(t, accounts, 2)

	// Accounts come back ordered by name
	ibkr := accounts[0].GetStructValue().GetFields()
	assert.Equal(t, "IBKR", ibkr["name"].GetStringValue())
	holdings := ibkr["holdings"].GetListValue().GetValues()
	require.Len(t, holdings, 2)

	// The unknown symbol degrades to a zero value instead of failing the request
	unknown := holdings[1].GetStructValue().GetFields()
	assert.True(t, unknown["price_unavailable"].GetBoolValue())
	assert.Equal(t, "0.00", unknown["current_value"].GetStringValue())

	portfolio := fields["portfolio"].GetStructValue().GetFields()
	assert.True(t, portfolio["mixed_currencies"].GetBoolValue())
	assert.Equal(t, float64(3), portfolio["holding_count"].GetNumberValue())
	assert.NotEmpty(t, fields["warnings"].GetListValue().GetValues())
}

func TestNegativeScenarios(t *testing.T) {
	_, err := grpcClient.Valuate(getAuthContext(), wrapperspb.String("not-a-uuid"))
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = grpcClient.Valuate(getAuthContext(), wrapperspb.String(uuid.NewString()))
	assert.Equal(t, codes.NotFound, status.Code(err))

	_, err = grpcClient.Valuate(context.Background(), wrapperspb.String(ownerID.String()))
	assert.Equal(t, codes.Unauthenticated, status.Code(err))
}

func TestHTTPHealth(t *testing.T) {
	resp, err := http.Get(getHTTPAddress() + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", body["status"])
}

package txlog

import (
	"context"
	"fmt"
	"time"

	"github.com/gocql/gocql"
	"github.com/mining-game-bot/internal/config"
	"github.com/mining-game-bot/internal/models"
	"github.com/mining-game-bot/pkg/logger"
)

// CassandraSink implements Sink on top of a Cassandra tx_log table.
type CassandraSink struct {
	session  *gocql.Session
	keyspace string
	timeout  time.Duration
	logger   *logger.Logger
}

// NewCassandraSink connects to Cassandra and ensures the audit schema
// exists.
func NewCassandraSink(cfg config.CassandraConfig, log *logger.Logger) (*CassandraSink, error) {
	cluster := gocql.NewCluster(cfg.Hosts...)

	// Set connection options
	cluster.Timeout = cfg.Timeout
	cluster.ConnectTimeout = cfg.Timeout
	cluster.Consistency = parseConsistency(cfg.Consistency)

	// Authentication (if provided)
	if cfg.Username != "" {
		cluster.Authenticator = gocql.PasswordAuthenticator{
			Username: cfg.Username,
			Password: cfg.Password,
		}
	}

	cluster.NumConns = 2
	cluster.PoolConfig.HostSelectionPolicy = gocql.TokenAwareHostPolicy(gocql.RoundRobinHostPolicy())

	session, err := cluster.CreateSession()
	if err != nil {
		return nil, fmt.Errorf("failed to create Cassandra session: %w", err)
	}

	log.Info("Connected to Cassandra", logger.F("hosts", fmt.Sprintf("%v", cfg.Hosts)), logger.F("keyspace", cfg.Keyspace))

	sink := &CassandraSink{
		session:  session,
		keyspace: cfg.Keyspace,
		timeout:  cfg.Timeout,
		logger:   log,
	}

	if err := sink.initializeSchema(); err != nil {
		session.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return sink, nil
}

// Close closes the Cassandra session
func (s *CassandraSink) Close() {
	if s.session != nil {
		s.session.Close()
		s.logger.Info("Cassandra session closed")
	}
}

// RecordSubmission writes the submitted transaction hash to the audit
// table.
func (s *CassandraSink) RecordSubmission(ctx context.Context, action string, tx models.TxHandle) error {
	query := fmt.Sprintf(`
		INSERT INTO %s.tx_log (tx_hash, action, submitted_at)
		VALUES (?, ?, ?)`, s.keyspace)

	queryCtx, cancel := s.queryContext(ctx)
	defer cancel()

	err := s.session.Query(query, string(tx), action, time.Now()).WithContext(queryCtx).Exec()
	if err != nil {
		s.logger.Error("Failed to record transaction submission",
			logger.F("tx_hash", string(tx)),
			logger.F("error", err.Error()))
		return fmt.Errorf("failed to record submission: %w", err)
	}

	s.logger.Debug("Transaction submission recorded", logger.F("tx_hash", string(tx)))
	return nil
}

// RecordReceipt writes the mined receipt to the audit table.
func (s *CassandraSink) RecordReceipt(ctx context.Context, action string, receipt *models.Receipt) error {
	query := fmt.Sprintf(`
		UPDATE %s.tx_log
		SET status = ?, block_number = ?, mined_at = ?, action = ?
		WHERE tx_hash = ?`, s.keyspace)

	queryCtx, cancel := s.queryContext(ctx)
	defer cancel()

	err := s.session.Query(query,
		receipt.Status,
		int64(receipt.BlockNum),
		receipt.MinedAt,
		action,
		string(receipt.TxHash),
	).WithContext(queryCtx).Exec()

	if err != nil {
		s.logger.Error("Failed to record transaction receipt",
			logger.F("tx_hash", string(receipt.TxHash)),
			logger.F("error", err.Error()))
		return fmt.Errorf("failed to record receipt: %w", err)
	}

	s.logger.Debug("Transaction receipt recorded", logger.F("tx_hash", string(receipt.TxHash)))
	return nil
}

// queryContext applies the configured timeout when the caller did not
// set a deadline.
func (s *CassandraSink) queryContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, hasDeadline := ctx.Deadline(); hasDeadline {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.timeout)
}

// initializeSchema creates the keyspace and table if they don't exist
func (s *CassandraSink) initializeSchema() error {
	createKeyspaceQuery := fmt.Sprintf(`
		CREATE KEYSPACE IF NOT EXISTS %s
		WITH replication = {
			'class': 'SimpleStrategy',
			'replication_factor': 1
		}`, s.keyspace)

	if err := s.session.Query(createKeyspaceQuery).Exec(); err != nil {
		return fmt.Errorf("failed to create keyspace: %w", err)
	}

	createTableQuery := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s.tx_log (
			tx_hash text PRIMARY KEY,
			action text,
			submitted_at timestamp,
			status int,
			block_number bigint,
			mined_at timestamp
		)`, s.keyspace)

	if err := s.session.Query(createTableQuery).Exec(); err != nil {
		return fmt.Errorf("failed to create tx_log table: %w", err)
	}

	s.logger.Info("Cassandra schema initialized", logger.F("keyspace", s.keyspace))
	return nil
}

// parseConsistency parses a consistency level string
func parseConsistency(consistencyStr string) gocql.Consistency {
	switch consistencyStr {
	case "ONE":
		return gocql.One
	case "TWO":
		return gocql.Two
	case "THREE":
		return gocql.Three
	case "QUORUM":
		return gocql.Quorum
	case "ALL":
		return gocql.All
	case "LOCAL_QUORUM":
		return gocql.LocalQuorum
	case "EACH_QUORUM":
		return gocql.EachQuorum
	case "LOCAL_ONE":
		return gocql.LocalOne
	default:
		return gocql.Quorum
	}
}

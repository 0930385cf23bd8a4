package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"riddle-game-service/internal/app"
	"riddle-game-service/internal/domain"
)

const (
	poolKey      = "riddle:state:pool"
	standingsKey = "riddle:state:standings"
	roundKey     = "riddle:state:round"
	cycleKey     = "riddle:state:cycle"
)

// StateRepository persists engine snapshots in Redis as one JSON document per
// durable collection. All four keys are written inside a single MULTI/EXEC so
// the pool, standings, round, and cycle marker never desync on a crash.
type StateRepository struct {
	client *redis.Client
}

func NewStateRepository(client *redis.Client) *StateRepository {
	return &StateRepository{client: client}
}

func (r *StateRepository) Save(ctx context.Context, snap app.Snapshot) error {
	pool, err := json.Marshal(snap.Pool)
	if err != nil {
		return fmt.Errorf("marshal pool: %w", err)
	}
	standings, err := json.Marshal(snap.Standings)
	if err != nil {
		return fmt.Errorf("marshal standings: %w", err)
	}
	round, err := json.Marshal(snap.Round)
	if err != nil {
		return fmt.Errorf("marshal round: %w", err)
	}
	cycle, err := json.Marshal(snap.Cycle)
	if err != nil {
		return fmt.Errorf("marshal cycle: %w", err)
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, poolKey, pool, 0)
	pipe.Set(ctx, standingsKey, standings, 0)
	pipe.Set(ctx, roundKey, round, 0)
	pipe.Set(ctx, cycleKey, cycle, 0)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

func (r *StateRepository) Load(ctx context.Context) (app.Snapshot, bool, error) {
	values, err := r.client.MGet(ctx, poolKey, standingsKey, roundKey, cycleKey).Result()
	if err != nil {
		return app.Snapshot{}, false, fmt.Errorf("load snapshot: %w", err)
	}
	if values[0] == nil {
		return app.Snapshot{}, false, nil
	}

	var snap app.Snapshot
	if err := unmarshalValue(values[0], &snap.Pool); err != nil {
		return app.Snapshot{}, false, fmt.Errorf("unmarshal pool: %w", err)
	}
	snap.Standings = []domain.Standing{}
	if err := unmarshalValue(values[1], &snap.Standings); err != nil {
		return app.Snapshot{}, false, fmt.Errorf("unmarshal standings: %w", err)
	}
	if err := unmarshalValue(values[2], &snap.Round); err != nil {
		return app.Snapshot{}, false, fmt.Errorf("unmarshal round: %w", err)
	}
	if err := unmarshalValue(values[3], &snap.Cycle); err != nil {
		return app.Snapshot{}, false, fmt.Errorf("unmarshal cycle: %w", err)
	}
	return snap, true, nil
}

func unmarshalValue(value any, dst any) error {
	if value == nil {
		return nil
	}
	raw, ok := value.(string)
	if !ok {
		return fmt.Errorf("unexpected value type %T", value)
	}
	return json.Unmarshal([]byte(raw), dst)
}

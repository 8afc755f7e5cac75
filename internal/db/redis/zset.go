package redis

import (
	"context"
	"strconv"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/zagg/internal/db"
	"github.com/kailas-cloud/zagg/internal/domain/aggregate"
	"github.com/kailas-cloud/zagg/internal/domain/zset"
)

// ZAdd adds or updates members and returns the number of new members.
func (s *Store) ZAdd(ctx context.Context, key string, members []zset.Member) (int64, error) {
	if len(members) == 0 {
		return 0, nil
	}
	cmd := s.b().Zadd().Key(key).ScoreMember()
	for _, m := range members {
		cmd = cmd.ScoreMember(m.Score, m.Name)
	}
	added, err := s.do(ctx, cmd.Build()).AsInt64()
	if err != nil {
		return 0, classify(db.OpZAdd, err)
	}
	return added, nil
}

// ZRangeWithScores returns members between rank start and stop, inclusive.
func (s *Store) ZRangeWithScores(ctx context.Context, key string, start, stop int64) ([]zset.Member, error) {
	cmd := s.b().Zrange().Key(key).
		Min(strconv.FormatInt(start, 10)).
		Max(strconv.FormatInt(stop, 10)).
		Withscores().Build()
	scores, err := s.do(ctx, cmd).AsZScores()
	if err != nil {
		return nil, classify(db.OpZRange, err)
	}
	return toMembers(scores), nil
}

// ZUnionStore runs ZUNIONSTORE and returns the destination cardinality.
func (s *Store) ZUnionStore(ctx context.Context, dest string, opts aggregate.Options[string]) (int64, error) {
	return combineStore(ctx, s, db.OpZUnionStore, dest, opts)
}

// ZInterStore runs ZINTERSTORE and returns the destination cardinality.
func (s *Store) ZInterStore(ctx context.Context, dest string, opts aggregate.Options[string]) (int64, error) {
	return combineStore(ctx, s, db.OpZInterStore, dest, opts)
}

// ZUnion runs ZUNION, with scores when requested.
func (s *Store) ZUnion(ctx context.Context, opts aggregate.Options[string], withScores bool) ([]zset.Member, error) {
	return combineRead(ctx, s, db.OpZUnion, opts, withScores)
}

// ZInter runs ZINTER, with scores when requested.
func (s *Store) ZInter(ctx context.Context, opts aggregate.Options[string], withScores bool) ([]zset.Member, error) {
	return combineRead(ctx, s, db.OpZInter, opts, withScores)
}

// ZUnionStoreBinary is ZUnionStore for binary keys.
func (s *Store) ZUnionStoreBinary(ctx context.Context, dest []byte, opts aggregate.Options[[]byte]) (int64, error) {
	return combineStore(ctx, s, db.OpZUnionStore, dest, opts)
}

// ZInterStoreBinary is ZInterStore for binary keys.
func (s *Store) ZInterStoreBinary(ctx context.Context, dest []byte, opts aggregate.Options[[]byte]) (int64, error) {
	return combineStore(ctx, s, db.OpZInterStore, dest, opts)
}

// ZUnionBinary is ZUnion for binary keys.
func (s *Store) ZUnionBinary(
	ctx context.Context, opts aggregate.Options[[]byte], withScores bool,
) ([]zset.Member, error) {
	return combineRead(ctx, s, db.OpZUnion, opts, withScores)
}

// ZInterBinary is ZInter for binary keys.
func (s *Store) ZInterBinary(
	ctx context.Context, opts aggregate.Options[[]byte], withScores bool,
) ([]zset.Member, error) {
	return combineRead(ctx, s, db.OpZInter, opts, withScores)
}

func combineStore[T aggregate.Token](
	ctx context.Context, s *Store, op string, dest T, opts aggregate.Options[T],
) (int64, error) {
	// Routed by the destination; the server rejects cross-slot sources itself.
	args := aggregate.Text(opts.Args())
	cmd := s.b().Arbitrary(op).Keys(string(dest)).Args(args...).Build()
	n, err := s.do(ctx, cmd).AsInt64()
	if err != nil {
		return 0, classify(op, err)
	}
	return n, nil
}

func combineRead[T aggregate.Token](
	ctx context.Context, s *Store, op string, opts aggregate.Options[T], withScores bool,
) ([]zset.Member, error) {
	args := aggregate.Text(opts.Args())
	if withScores {
		args = append(args, "WITHSCORES")
	}

	// Routed by the first source key.
	c := s.b().Arbitrary(op)
	if opts.Keys.Len() > 0 {
		c = c.Args(args[0]).Keys(args[1]).Args(args[2:]...)
	} else {
		c = c.Args(args...)
	}
	res := s.do(ctx, c.ReadOnly())

	if withScores {
		scores, err := res.AsZScores()
		if err != nil {
			return nil, classify(op, err)
		}
		return toMembers(scores), nil
	}

	names, err := res.AsStrSlice()
	if err != nil {
		return nil, classify(op, err)
	}
	out := make([]zset.Member, len(names))
	for i, name := range names {
		out[i] = zset.Member{Name: name}
	}
	return out, nil
}

func toMembers(scores []rueidis.ZScore) []zset.Member {
	out := make([]zset.Member, len(scores))
	for i, z := range scores {
		out[i] = zset.Member{Name: z.Member, Score: z.Score}
	}
	return out
}

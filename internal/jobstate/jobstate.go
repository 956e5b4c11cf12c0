package jobstate

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sysu-ecnc-dev/cake-cutting/backend/internal/domain"
	"github.com/sysu-ecnc-dev/cake-cutting/backend/internal/utils"
)

// Store 在 redis 中保存运行中任务的进度、取消标记和求解结果缓存
type Store struct {
	client     *redis.Client
	expiration time.Duration
}

func NewStore(client *redis.Client, expiration time.Duration) *Store {
	return &Store{
		client:     client,
		expiration: expiration,
	}
}

func (s *Store) SaveProgress(ctx context.Context, jobID string, progress domain.JobProgress) error {
	b, err := json.Marshal(progress)
	if err != nil {
		return err
	}

	return s.client.Set(ctx, utils.JobProgressKey(jobID), b, s.expiration).Err()
}

// GetProgress 在任务还没有写入进度时返回 nil
func (s *Store) GetProgress(ctx context.Context, jobID string) (*domain.JobProgress, error) {
	b, err := s.client.Get(ctx, utils.JobProgressKey(jobID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	progress := &domain.JobProgress{}
	if err := json.Unmarshal(b, progress); err != nil {
		return nil, err
	}

	return progress, nil
}

func (s *Store) RequestCancel(ctx context.Context, jobID string) error {
	return s.client.Set(ctx, utils.JobCancelKey(jobID), 1, s.expiration).Err()
}

func (s *Store) IsCancelled(ctx context.Context, jobID string) (bool, error) {
	n, err := s.client.Exists(ctx, utils.JobCancelKey(jobID)).Result()
	if err != nil {
		return false, err
	}

	return n > 0, nil
}

func (s *Store) CacheResult(ctx context.Context, key string, jobID string) error {
	return s.client.Set(ctx, key, jobID, s.expiration).Err()
}

// CachedResult 返回缓存的任务 ID，没有缓存时返回空字符串
func (s *Store) CachedResult(ctx context.Context, key string) (string, error) {
	jobID, err := s.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", err
	}

	return jobID, nil
}

// Forget 删除缓存的结果，用于缓存指向的任务已经不存在的情况
func (s *Store) Forget(ctx context.Context, key string) error {
	return s.client.Del(ctx, key).Err()
}

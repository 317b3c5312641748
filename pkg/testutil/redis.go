package testutil

import "context"

type MockRedisClient struct {
	GetFunc      func(ctx context.Context, key string) (string, error)
	SetFunc      func(ctx context.Context, key, value string) error
	DelFunc      func(ctx context.Context, keys ...string) error
	SAddFunc     func(ctx context.Context, key string, members ...string) error
	SRemFunc     func(ctx context.Context, key string, members ...string) error
	SMembersFunc func(ctx context.Context, key string) ([]string, error)
}

func (m *MockRedisClient) Get(ctx context.Context, key string) (string, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, key)
	}

	return "", nil
}

func (m *MockRedisClient) Set(ctx context.Context, key, value string) error {
	if m.SetFunc != nil {
		return m.SetFunc(ctx, key, value)
	}

	return nil
}

func (m *MockRedisClient) Del(ctx context.Context, keys ...string) error {
	if m.DelFunc != nil {
		return m.DelFunc(ctx, keys...)
	}

	return nil
}

func (m *MockRedisClient) SAdd(ctx context.Context, key string, members ...string) error {
	if m.SAddFunc != nil {
		return m.SAddFunc(ctx, key, members...)
	}

	return nil
}

func (m *MockRedisClient) SRem(ctx context.Context, key string, members ...string) error {
	if m.SRemFunc != nil {
		return m.SRemFunc(ctx, key, members...)
	}

	return nil
}

func (m *MockRedisClient) SMembers(ctx context.Context, key string) ([]string, error) {
	if m.SMembersFunc != nil {
		return m.SMembersFunc(ctx, key)
	}

	return nil, nil
}

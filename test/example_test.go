package test

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	goBlog "github.com/MrEthical07/goBlog"
	"github.com/MrEthical07/goBlog/session"
)

// ExampleNew builds a client that keeps its tokens in Redis.
func ExampleNew() {
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:6379"})

	client, err := goBlog.New().
		WithBaseURL("https://blog.example.com").
		WithTokenStore(session.NewRedisStore(rdb, "blog", "default", 0)).
		WithMetricsEnabled(true).
		Build()
	if err != nil {
		return
	}
	defer client.Close()
}

// ExampleClient_Watch follows session changes, for example to redraw a header.
func ExampleClient_Watch() {
	var client *goBlog.Client
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		for st := range client.Watch(ctx) {
			if st.LoggedIn() {
				fmt.Println("signed in as", st.User.Username)
			}
		}
	}()
	_ = client.FetchUser(ctx)
}

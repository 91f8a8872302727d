package core

import (
	"context"
	"fmt"
	"testing"

	"github.com/rs/zerolog"

	"github.com/brnhrs/warhorse-server/internal/chat"
	"github.com/brnhrs/warhorse-server/internal/i18n"
	"github.com/brnhrs/warhorse-server/internal/relationship"
	"github.com/brnhrs/warhorse-server/internal/session"
	"github.com/brnhrs/warhorse-server/internal/store/memory"
)

func benchmarkRoomBroadcast(b *testing.B, recipients int) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	st := memory.New()
	sessions := session.NewRegistry()
	rel := relationship.New(st, sessions, nil, nil)
	router := chat.NewRouter(st, sessions, "general")
	hub := NewHub(st, sessions, rel, router, "general", zerolog.Nop())
	go hub.Run(ctx)

	login := func(sess session.ID, account string) *Client {
		c := NewClient(sess)
		hub.RegisterClient(c)
		<-c.Events // hello
		c.Commands <- &Command{
			Kind: CommandRegister,
			Register: relationship.RegisterRequest{
				AccountName: account, DisplayName: account, Email: account + "@x.io",
				Password: "password", Language: i18n.English,
			},
		}
		<-c.Events // login ok
		<-c.Events // friend requests
		<-c.Events // friends
		return c
	}

	sender := login("sender", "sender")

	clients := make([]*Client, 0, recipients)
	for i := 0; i < recipients; i++ {
		clients = append(clients, login(session.ID(fmt.Sprintf("r%d", i)), fmt.Sprintf("r%d", i)))
	}

	// Drain events for all but the first recipient to avoid channel backpressure.
	target := clients[0]
	for _, c := range clients[1:] {
		go func(cl *Client) {
			for range cl.Events {
			}
		}(c)
	}

	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		sender.Commands <- &Command{
			Kind:     CommandSendChatMessage,
			Channel:  chat.RoomChannel("general"),
			Text:     "payload",
			Language: i18n.English,
		}
		<-target.Events
	}
}

func BenchmarkRoomBroadcast_10(b *testing.B)  { benchmarkRoomBroadcast(b, 10) }
func BenchmarkRoomBroadcast_100(b *testing.B) { benchmarkRoomBroadcast(b, 100) }
func BenchmarkRoomBroadcast_500(b *testing.B) { benchmarkRoomBroadcast(b, 500) }

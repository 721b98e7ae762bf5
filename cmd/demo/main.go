// Offline walkthrough of one banklink exchange against a stub bank: sign an
// outbound payment packet, replay it through verification as the bank would,
// and show the renderers. Runs without redis or postgres.
package main

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"os"
	"time"

	"github.com/rs/zerolog"

	"merchant-banklink/internal/banklink"
)

func main() {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).
		Level(zerolog.TraceLevel).With().Timestamp().Logger()

	alg, err := banklink.NewHMACAlgorithm([]byte("demo-shared-secret"))
	if err != nil {
		log.Fatal(err)
	}
	nonces := banklink.NewMemoryNonceStore(time.Hour)
	ctx := context.Background()

	// ---- Outbound: merchant signs an auth request ----
	out, err := banklink.IPizzaAuthRequest.New("demo-1", alg,
		banklink.WithLogger(logger),
		banklink.WithNonceManager(nonces),
	)
	if err != nil {
		log.Fatal(err)
	}
	nonce, _ := out.IssueNonce(ctx)
	now := time.Now()
	for _, kv := range [][2]string{
		{banklink.FieldVersion, "008"},
		{banklink.FieldSenderID, "DEMOSHOP"},
		{banklink.FieldRecvID, "DEMOBANK"},
		{banklink.FieldNonce, nonce},
		{banklink.FieldReturn, "https://shop.example/return"},
		{banklink.FieldDateTime, now.Format(banklink.DateTimeLayout)},
		{banklink.FieldRID, "session-42"},
	} {
		if err := out.Set(kv[0], kv[1]); err != nil {
			log.Fatal(err)
		}
	}
	if err := out.Sign(); err != nil {
		log.Fatal(err)
	}

	fmt.Println("--- HTML form fragment ---")
	fmt.Print(out.HTML())
	fmt.Println("--- JSON projection ---")
	fmt.Println(out.JSON())

	// ---- Inbound: the same fields come back and verify ----
	values := url.Values{}
	for _, p := range out.Parameters() {
		values.Set(p.Name, p.Value)
	}
	in, err := banklink.IPizzaAuthRequest.NewInbound("demo-2", alg, values, "UTF-8",
		banklink.WithNonceManager(nonces),
		banklink.WithVerifiers(banklink.DefaultVerifiers(5*time.Minute)),
		banklink.WithLogger(logger),
	)
	if err != nil {
		log.Fatal(err)
	}

	ok, err := in.Verify(ctx)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("first verification: %v\n", ok)

	// A replay of the same packet fails on the consumed nonce.
	replay, _ := banklink.IPizzaAuthRequest.NewInbound("demo-3", alg, values, "UTF-8",
		banklink.WithNonceManager(nonces),
		banklink.WithVerifiers(banklink.DefaultVerifiers(5*time.Minute)),
	)
	ok, err = replay.Verify(ctx)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("replayed verification: %v\n", ok)
}

package metrics

import (
	"strconv"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(
		packetsSignedTotal,
		packetVerificationsTotal,
		nonceReplaysTotal,
	)
}

var (
	packetsSignedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "banklink_packets_signed_total",
			Help: "Outbound packets signed, per bank.",
		},
		[]string{"bank"},
	)

	packetVerificationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "banklink_packet_verifications_total",
			Help: "Inbound packet verification attempts, per bank and result.",
		},
		[]string{"bank", "result"},
	)

	nonceReplaysTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "banklink_nonce_replays_total",
			Help: "Verification attempts rejected because the nonce was already consumed.",
		},
		[]string{"bank"},
	)
)

func norm(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

func IncPacketSigned(bank string) {
	packetsSignedTotal.WithLabelValues(norm(bank)).Inc()
}

func IncPacketVerification(bank string, result bool) {
	packetVerificationsTotal.WithLabelValues(norm(bank), strconv.FormatBool(result)).Inc()
}

func IncNonceReplay(bank string) {
	nonceReplaysTotal.WithLabelValues(norm(bank)).Inc()
}

package httpapi

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	permitsIssued = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mediagate_permits_issued_total",
		Help: "Send permits issued after successful verification exchange.",
	})
	permitsRejected = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mediagate_permits_rejected_total",
		Help: "Verification exchanges rejected by the verifier.",
	})
	ticketsIssued = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mediagate_upload_tickets_total",
		Help: "Single-use upload tickets issued.",
	})
	mediaFinalized = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mediagate_media_finalized_total",
		Help: "Media records committed by finalize.",
	})
	viewsSigned = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mediagate_views_signed_total",
		Help: "Object keys signed for viewing, after batch dedupe.",
	})
	messagesSent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mediagate_media_messages_total",
		Help: "Media messages sent through permit consumption.",
	})
)

// Package rtc builds the ICE server configuration handed to clients.
// Peers negotiate their own media paths; the server only tells them where
// the STUN/TURN infrastructure lives.
package rtc

import (
	"github.com/pion/webrtc/v4"

	"github.com/apurv-sgh/test-edtech/internal/config"
)

// ClientConfig mirrors the RTCConfiguration shape browsers expect.
type ClientConfig struct {
	ICEServers           []webrtc.ICEServer `json:"iceServers"`
	ICECandidatePoolSize uint8              `json:"iceCandidatePoolSize"`
}

var stunServers = []string{
	"stun:stun.l.google.com:19302",
	"stun:stun1.l.google.com:19302",
	"stun:stun2.l.google.com:19302",
	"stun:stun3.l.google.com:19302",
	"stun:stun4.l.google.com:19302",
}

func ForClients(cfg *config.Config) ClientConfig {
	out := ClientConfig{ICECandidatePoolSize: 10}
	for _, u := range stunServers {
		out.ICEServers = append(out.ICEServers, webrtc.ICEServer{URLs: []string{u}})
	}
	if cfg.TURNURL != "" {
		out.ICEServers = append(out.ICEServers, webrtc.ICEServer{
			URLs:       []string{cfg.TURNURL},
			Username:   cfg.TURNUsername,
			Credential: cfg.TURNCredential,
		})
	}
	return out
}

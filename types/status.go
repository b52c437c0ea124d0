package types

// ---- Retained on "link/status" ----

type InterlockStatus struct {
	Connection  string `json:"connection"` // "unknown" | "connected" | "lost"
	Continuity  string `json:"continuity"` // "unknown" | "good" | "fault"
	Ignition    string `json:"ignition"`   // "idle" | "pending" | "confirmed" | "failed"
	Armed       bool   `json:"armed"`
	MustRelease bool   `json:"must_release"`
	Awaiting    bool   `json:"awaiting"`
	Buzzer      bool   `json:"buzzer"`
	IgniteSent  uint32 `json:"ignite_sent"`
}

type ReceiverStatus struct {
	Continuity bool   `json:"continuity"`
	Firing     bool   `json:"firing"`
	Heartbeats uint32 `json:"heartbeats"`
	Fired      uint32 `json:"fired"`
	Refused    uint32 `json:"refused"`
}

// ---- Published on "link/rssi" per received packet ----

type PacketQuality struct {
	RSSI int16  `json:"rssi_dbm"`
	SNR  int8   `json:"snr_qdb"` // quarter dB
	Msg  string `json:"msg"`
}

package entity

// Trace represents an enriched EVM transaction trace supplied by the platform
type Trace struct {
	BlockNumber     uint64                   `json:"blockNumber"`
	From            string                   `json:"from"`
	To              string                   `json:"to"`
	TransactionHash string                   `json:"transactionHash"`
	Input           string                   `json:"input"`
	Output          string                   `json:"output"`
	Gas             uint64                   `json:"gas"`
	GasUsed         uint64                   `json:"gasUsed"`
	Value           string                   `json:"value"`
	Calls           []Call                   `json:"calls"`
	PreState        map[string]*AccountState `json:"preState"`
	PostState       map[string]*AccountState `json:"postState"`
}

// Call represents a single internal call inside a trace
type Call struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Input   string `json:"input"`
	Output  string `json:"output"`
	GasUsed uint64 `json:"gasUsed"`
	Value   string `json:"value"`
}

// AccountState represents an account snapshot before or after execution
type AccountState struct {
	Balance string `json:"balance"`
	Nonce   uint64 `json:"nonce"`
}

// DetectRequest is the request object the platform sends to the plugin
type DetectRequest struct {
	ChainID uint64 `json:"chainId"`
	TxHash  string `json:"txHash"`
	Trace   Trace  `json:"trace"`
}

// DetectionInfo is the detection result embedded in a response
type DetectionInfo struct {
	Detected    bool      `json:"detected"`
	Error       bool      `json:"error,omitempty"`
	Message     string    `json:"message"`
	RiskDetails []Finding `json:"riskDetails,omitempty"`
}

// DetectResponse wraps the original request with its detection result
type DetectResponse struct {
	Request       DetectRequest `json:"request"`
	DetectionInfo DetectionInfo `json:"detectionInfo"`
}

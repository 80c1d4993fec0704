// Rugpull Detector Demo
//
// Usage:
//
//	go run scripts/detector_demo.go                 # run the built-in sample traces
//	go run scripts/detector_demo.go request.json    # analyze a saved detect request
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	app_service "rugpull-detector/internal/application/service"
	"rugpull-detector/internal/domain/entity"
	"rugpull-detector/internal/domain/service"
	"rugpull-detector/internal/infrastructure/blockchain"
	"rugpull-detector/internal/infrastructure/config"
	"rugpull-detector/internal/infrastructure/logger"
)

const (
	owner    = "0xf39fd6e51aad88f6f4ce6ab8827279cfffb92266"
	attacker = "0x742d35cc6b7d72f4b73a3623b498b9b3b8b2f6e0"
	token    = "0xa0b86a33e6411dd02d5bb2bb4cb4ecec4f5c87c6"
)

func main() {
	// Initialize logger
	log, _ := logger.NewLogger("warn")

	cfg := config.DefaultDetectorConfig()
	registry, err := blockchain.NewSignatureTable(&cfg)
	if err != nil {
		fmt.Printf("❌ Failed to build signature table: %v\n", err)
		os.Exit(1)
	}

	detector, err := app_service.NewDetectionService(registry, blockchain.NewCallDecoderService(log), &cfg, nil, log)
	if err != nil {
		fmt.Printf("❌ Failed to create detector: %v\n", err)
		os.Exit(1)
	}

	if len(os.Args) > 1 {
		analyzeFile(detector, os.Args[1])
		return
	}

	samples := []struct {
		name  string
		trace *entity.Trace
	}{
		{
			name: "Plain ERC20 transfer",
			trace: &entity.Trace{
				From: owner, To: token,
				Calls: []entity.Call{{From: owner, To: token, Input: "0xa9059cbb000000000000000000000000742d35cc6b7d72f4b73a3623b498b9b3b8b2f6e00000000000000000000000000000000000000000000000000de0b6b3a7640000"}},
			},
		},
		{
			name: "Ownership handover followed by liquidity removal",
			trace: &entity.Trace{
				From: owner, To: token,
				Calls: []entity.Call{
					{From: owner, To: token, Input: "0xf2fde38b000000000000000000000000742d35cc6b7d72f4b73a3623b498b9b3b8b2f6e0"},
					{From: attacker, To: token, Input: "0x02751cec"},
				},
			},
		},
		{
			name: "Large mint",
			trace: &entity.Trace{
				From: owner, To: token,
				Calls: []entity.Call{{From: owner, To: token, Input: "0x40c10f19000000000000000000000000742d35cc6b7d72f4b73a3623b498b9b3b8b2f6e000000000000000000000000000000000000000000001a784379d99db42000000"}},
			},
		},
		{
			name: "Whale dump",
			trace: &entity.Trace{
				From: attacker, To: token,
				PreState: map[string]*entity.AccountState{
					attacker: {Balance: "900"},
					owner:    {Balance: "100"},
				},
				PostState: map[string]*entity.AccountState{
					attacker: {Balance: "0"},
					owner:    {Balance: "100"},
				},
			},
		},
		{
			name: "Malformed balance",
			trace: &entity.Trace{
				From: owner, To: token,
				PreState: map[string]*entity.AccountState{owner: {Balance: "lots"}},
			},
		},
	}

	fmt.Println("🚀 Rugpull Detector Results")
	fmt.Println("===========================")

	detected := 0
	for i, sample := range samples {
		fmt.Printf("\n%d. %s\n", i+1, sample.name)
		fmt.Printf("   Calls: %d, accounts: %d\n", len(sample.trace.Calls), len(sample.trace.PreState))

		verdict := detector.Analyze(sample.trace)
		switch {
		case verdict.Error:
			fmt.Printf("   ⚠️  Analysis incomplete, failed steps: %v\n", verdict.FailedSteps)
		case verdict.Detected:
			fmt.Printf("   🚨 Rugpull risk detected\n")
			detected++
		default:
			fmt.Printf("   ✅ No high severity risk\n")
		}
		for _, f := range verdict.Findings {
			fmt.Printf("      [%s] %s: %s\n", f.Severity, f.Type, f.Description)
		}
	}

	fmt.Printf("\n📊 %d of %d sample traces flagged, %d rules loaded\n", detected, len(samples), len(registry.Rules()))
}

func analyzeFile(detector service.RugpullDetector, path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Printf("❌ Failed to read %s: %v\n", path, err)
		os.Exit(1)
	}

	var req entity.DetectRequest
	if err := json.Unmarshal(data, &req); err != nil {
		fmt.Printf("❌ Failed to parse detect request: %v\n", err)
		os.Exit(1)
	}

	out, _ := json.MarshalIndent(detector.Detect(context.Background(), &req), "", "  ")
	fmt.Println(string(out))
}

// Benchmark tool for testing Heron against labeled billing data.
//
// Usage:
//   go run cmd/benchmark/main.go -csv /path/to/bills.csv -url http://localhost:8080
//
// Expected CSV columns: session_id, patient_type, total, is_anomalous, items
// where items is a semicolon-separated list of Category|Name|Price entries.
//
// This tool:
//  1. Reads labeled bill data (with anomaly labels)
//  2. Sends each bill to Heron for auditing
//  3. Compares Heron's verdict (FLAG/CLEAN) with actual labels
//  4. Calculates precision, recall, F1-score, and confusion matrix
package main

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// LabeledBill represents a row from the benchmark dataset.
type LabeledBill struct {
	SessionID   string
	PatientType string
	Items       []BillItem
	Total       float64
	IsAnomalous bool
}

// BillItem is one catalog line on a bill.
type BillItem struct {
	Category string  `json:"category"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
}

// AuditRequest is the Heron API request format.
type AuditRequest struct {
	BillRef     string     `json:"billRef"`
	PatientType string     `json:"patientType"`
	Items       []BillItem `json:"items"`
	Total       float64    `json:"total"`
}

// AuditResponse is the Heron API response format.
type AuditResponse struct {
	ID      string   `json:"id"`
	Status  string   `json:"status"` // "FLAG" or "CLEAN"
	Score   float64  `json:"score"`
	Reasons []string `json:"reasons"`
}

// Metrics tracks benchmark results.
type Metrics struct {
	TruePositives  int64 // Anomalous flagged as FLAG
	FalsePositives int64 // Clean flagged as FLAG
	TrueNegatives  int64 // Clean passed as CLEAN
	FalseNegatives int64 // Anomalous passed as CLEAN (missed!)

	TotalProcessed int64
	TotalAnomalous int64
	TotalClean     int64
	TotalErrors    int64

	ProcessingTimeMs int64
}

func main() {
	csvPath := flag.String("csv", "", "Path to labeled bills CSV file")
	baseURL := flag.String("url", "http://localhost:8080", "Heron base URL")
	facilityID := flag.String("facility", "benchmark-test", "Facility ID for requests")
	limit := flag.Int("limit", 10000, "Maximum bills to process (0 = all)")
	workers := flag.Int("workers", 10, "Number of concurrent workers")
	anomalousOnly := flag.Bool("anomalous-only", false, "Only test anomalous bills")
	sampleRate := flag.Float64("sample", 1.0, "Sample rate for clean bills (0.0-1.0)")
	verbose := flag.Bool("verbose", false, "Print each bill result")
	flag.Parse()

	if *csvPath == "" {
		fmt.Println("Usage: benchmark -csv /path/to/bills.csv [-url http://localhost:8080]")
		fmt.Println("\nFlags:")
		flag.PrintDefaults()
		os.Exit(1)
	}

	fmt.Println("╔═══════════════════════════════════════════════════════════════╗")
	fmt.Println("║          HERON BENCHMARK - Billing Anomaly Detection          ║")
	fmt.Println("╚═══════════════════════════════════════════════════════════════╝")
	fmt.Printf("\nCSV File:       %s\n", *csvPath)
	fmt.Printf("Heron URL:      %s\n", *baseURL)
	fmt.Printf("Facility ID:    %s\n", *facilityID)
	fmt.Printf("Workers:        %d\n", *workers)
	fmt.Printf("Limit:          %d\n", *limit)
	fmt.Printf("Anomalous Only: %v\n", *anomalousOnly)
	fmt.Printf("Sample Rate:    %.2f\n", *sampleRate)
	fmt.Println()

	if err := checkHealth(*baseURL); err != nil {
		fmt.Printf("ERROR: Heron not reachable at %s: %v\n", *baseURL, err)
		fmt.Println("\nMake sure Heron is running:")
		fmt.Println("  cd heron && go run cmd/heron/main.go")
		os.Exit(1)
	}
	fmt.Println("✓ Heron is healthy")

	fmt.Printf("\nReading bill data from %s...\n", *csvPath)
	bills, err := readBillsCSV(*csvPath, *limit, *anomalousOnly, *sampleRate)
	if err != nil {
		fmt.Printf("ERROR: Failed to read CSV: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("✓ Loaded %d bills\n", len(bills))

	anomalousCount := 0
	for _, b := range bills {
		if b.IsAnomalous {
			anomalousCount++
		}
	}
	fmt.Printf("  - Anomalous: %d (%.2f%%)\n", anomalousCount, 100*float64(anomalousCount)/float64(len(bills)))
	fmt.Printf("  - Clean:     %d (%.2f%%)\n", len(bills)-anomalousCount, 100*float64(len(bills)-anomalousCount)/float64(len(bills)))

	fmt.Printf("\nRunning benchmark with %d workers...\n", *workers)
	startTime := time.Now()
	metrics := runBenchmark(bills, *baseURL, *facilityID, *workers, *verbose)
	duration := time.Since(startTime)

	printResults(metrics, duration)
}

func checkHealth(baseURL string) error {
	resp, err := http.Get(baseURL + "/health")
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unhealthy: status %d", resp.StatusCode)
	}
	return nil
}

// parseItems decodes a semicolon-separated Category|Name|Price list.
func parseItems(raw string) []BillItem {
	var items []BillItem
	for _, entry := range strings.Split(raw, ";") {
		parts := strings.Split(entry, "|")
		if len(parts) != 3 {
			continue
		}
		price, err := strconv.ParseFloat(strings.TrimSpace(parts[2]), 64)
		if err != nil {
			continue
		}
		items = append(items, BillItem{
			Category: strings.TrimSpace(parts[0]),
			Name:     strings.TrimSpace(parts[1]),
			Price:    price,
		})
	}
	return items
}

func readBillsCSV(path string, limit int, anomalousOnly bool, sampleRate float64) ([]LabeledBill, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := csv.NewReader(file)

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	colIndex := make(map[string]int)
	for i, col := range header {
		colIndex[strings.ToLower(col)] = i
	}

	var bills []LabeledBill
	sampleCounter := 0

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue // Skip malformed rows
		}

		isAnomalous := record[colIndex["is_anomalous"]] == "1"

		if anomalousOnly && !isAnomalous {
			continue
		}

		// Sample clean bills
		if !isAnomalous && sampleRate < 1.0 {
			sampleCounter++
			if float64(sampleCounter%100)/100.0 >= sampleRate {
				continue
			}
		}

		total, _ := strconv.ParseFloat(record[colIndex["total"]], 64)

		bill := LabeledBill{
			SessionID:   record[colIndex["session_id"]],
			PatientType: record[colIndex["patient_type"]],
			Items:       parseItems(record[colIndex["items"]]),
			Total:       total,
			IsAnomalous: isAnomalous,
		}

		bills = append(bills, bill)

		if limit > 0 && len(bills) >= limit {
			break
		}
	}

	return bills, nil
}

func runBenchmark(bills []LabeledBill, baseURL, facilityID string, numWorkers int, verbose bool) *Metrics {
	metrics := &Metrics{}

	work := make(chan LabeledBill, 100)
	var wg sync.WaitGroup

	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			client := &http.Client{Timeout: 10 * time.Second}

			for bill := range work {
				start := time.Now()
				result, err := auditBill(client, baseURL, facilityID, bill)
				elapsed := time.Since(start).Milliseconds()

				atomic.AddInt64(&metrics.ProcessingTimeMs, elapsed)
				atomic.AddInt64(&metrics.TotalProcessed, 1)

				if err != nil {
					atomic.AddInt64(&metrics.TotalErrors, 1)
					if verbose {
						fmt.Printf("ERROR: %s -> %v\n", bill.SessionID, err)
					}
					continue
				}

				if bill.IsAnomalous {
					atomic.AddInt64(&metrics.TotalAnomalous, 1)
				} else {
					atomic.AddInt64(&metrics.TotalClean, 1)
				}

				predicted := result.Status == "FLAG"
				actual := bill.IsAnomalous

				if predicted && actual {
					atomic.AddInt64(&metrics.TruePositives, 1)
				} else if predicted && !actual {
					atomic.AddInt64(&metrics.FalsePositives, 1)
				} else if !predicted && !actual {
					atomic.AddInt64(&metrics.TrueNegatives, 1)
				} else { // !predicted && actual
					atomic.AddInt64(&metrics.FalseNegatives, 1)
				}

				if verbose {
					status := "✓"
					if (predicted && !actual) || (!predicted && actual) {
						status = "✗"
					}
					session := bill.SessionID
					if len(session) > 14 {
						session = session[:14]
					}
					fmt.Printf("%s %-14s | Type: %-10s | Total: ৳%12.2f | Anomalous: %-5v | Heron: %-5s (%.2f)\n",
						status,
						session,
						bill.PatientType,
						bill.Total,
						bill.IsAnomalous,
						result.Status,
						result.Score,
					)
				}
			}
		}()
	}

	for _, bill := range bills {
		work <- bill
	}
	close(work)

	wg.Wait()

	return metrics
}

func auditBill(client *http.Client, baseURL, facilityID string, bill LabeledBill) (*AuditResponse, error) {
	req := AuditRequest{
		BillRef:     bill.SessionID,
		PatientType: bill.PatientType,
		Items:       bill.Items,
		Total:       bill.Total,
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequest(http.MethodPost, baseURL+"/audit", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Facility-ID", facilityID)

	resp, err := client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}

	var result AuditResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, err
	}

	return &result, nil
}

func printResults(m *Metrics, duration time.Duration) {
	fmt.Println("\n╔═══════════════════════════════════════════════════════════════╗")
	fmt.Println("║                      BENCHMARK RESULTS                        ║")
	fmt.Println("╚═══════════════════════════════════════════════════════════════╝")

	fmt.Printf("\n📊 DATASET STATISTICS\n")
	fmt.Printf("   Total Processed:  %d\n", m.TotalProcessed)
	fmt.Printf("   Total Anomalous:  %d\n", m.TotalAnomalous)
	fmt.Printf("   Total Clean:      %d\n", m.TotalClean)
	fmt.Printf("   Errors:           %d\n", m.TotalErrors)

	fmt.Printf("\n📈 CONFUSION MATRIX\n")
	fmt.Println("                        Predicted")
	fmt.Println("                    FLAG        CLEAN")
	fmt.Println("              ┌──────────┬──────────┐")
	fmt.Printf("   Actual  A  │ %8d │ %8d │  (TP, FN)\n", m.TruePositives, m.FalseNegatives)
	fmt.Println("              ├──────────┼──────────┤")
	fmt.Printf("           C  │ %8d │ %8d │  (FP, TN)\n", m.FalsePositives, m.TrueNegatives)
	fmt.Println("              └──────────┴──────────┘")

	precision := float64(0)
	if m.TruePositives+m.FalsePositives > 0 {
		precision = float64(m.TruePositives) / float64(m.TruePositives+m.FalsePositives)
	}

	recall := float64(0)
	if m.TruePositives+m.FalseNegatives > 0 {
		recall = float64(m.TruePositives) / float64(m.TruePositives+m.FalseNegatives)
	}

	f1 := float64(0)
	if precision+recall > 0 {
		f1 = 2 * (precision * recall) / (precision + recall)
	}

	accuracy := float64(0)
	total := m.TruePositives + m.TrueNegatives + m.FalsePositives + m.FalseNegatives
	if total > 0 {
		accuracy = float64(m.TruePositives+m.TrueNegatives) / float64(total)
	}

	fmt.Printf("\n🎯 DETECTION METRICS\n")
	fmt.Printf("   Precision:  %.4f  (of flags, how many were actual anomalies)\n", precision)
	fmt.Printf("   Recall:     %.4f  (of anomalies, how many did we catch)\n", recall)
	fmt.Printf("   F1-Score:   %.4f  (harmonic mean of precision & recall)\n", f1)
	fmt.Printf("   Accuracy:   %.4f  (overall correct predictions)\n", accuracy)

	fmt.Printf("\n🔍 DETECTION ANALYSIS\n")
	if m.TotalAnomalous > 0 {
		detectionRate := float64(m.TruePositives) / float64(m.TotalAnomalous) * 100
		missRate := float64(m.FalseNegatives) / float64(m.TotalAnomalous) * 100
		fmt.Printf("   Anomalies Detected: %d / %d (%.2f%%)\n", m.TruePositives, m.TotalAnomalous, detectionRate)
		fmt.Printf("   Anomalies Missed:   %d / %d (%.2f%%) ⚠️\n", m.FalseNegatives, m.TotalAnomalous, missRate)
	}
	if m.TotalClean > 0 {
		falseAlarmRate := float64(m.FalsePositives) / float64(m.TotalClean) * 100
		fmt.Printf("   False Alarms:       %d / %d (%.2f%%)\n", m.FalsePositives, m.TotalClean, falseAlarmRate)
	}

	fmt.Printf("\n⏱️  PERFORMANCE\n")
	fmt.Printf("   Total Duration:   %v\n", duration.Round(time.Millisecond))
	if m.TotalProcessed > 0 {
		avgMs := float64(m.ProcessingTimeMs) / float64(m.TotalProcessed)
		bps := float64(m.TotalProcessed) / duration.Seconds()
		fmt.Printf("   Avg Latency:      %.2f ms\n", avgMs)
		fmt.Printf("   Throughput:       %.2f bills/sec\n", bps)
	}

	fmt.Printf("\n💡 INTERPRETATION\n")
	if recall >= 0.9 {
		fmt.Println("   ✅ Excellent recall - catching most anomalies")
	} else if recall >= 0.7 {
		fmt.Println("   ⚠️  Good recall - but missing some anomalies")
	} else if recall >= 0.5 {
		fmt.Println("   ⚠️  Moderate recall - significant anomalies being missed")
	} else {
		fmt.Println("   ❌ Poor recall - most anomalies are being missed!")
	}

	if precision >= 0.5 {
		fmt.Println("   ✅ Good precision - flags are meaningful")
	} else if precision >= 0.2 {
		fmt.Println("   ⚠️  Low precision - many false alarms")
	} else {
		fmt.Println("   ❌ Very low precision - mostly false alarms")
	}

	fmt.Println()
}

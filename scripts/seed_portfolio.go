// seed_portfolio.go — standalone script to load asset factor inputs from a
// CSV export and run an initial assessment for each via the Atlas API.
//
// Usage:
//
//	go run scripts/seed_portfolio.go -csv /path/to/assets.csv -api http://localhost:8700 -actor system
//
// Expected columns:
//
//	asset_id,equipment_type,age_years,expected_useful_life,condition_index,defect_severity,maintenance_frequency,environment,utilization,safety,downtime_days,repair_cost
//
// Empty cells mean "factor not available" and are omitted from the payload.
package main

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"
)

type reliabilityInputs struct {
	EquipmentType        string   `json:"equipment_type,omitempty"`
	AgeYears             *float64 `json:"age_years,omitempty"`
	ExpectedUsefulLife   *float64 `json:"expected_useful_life,omitempty"`
	ConditionIndex       *float64 `json:"condition_index,omitempty"`
	DefectSeverity       string   `json:"defect_severity,omitempty"`
	MaintenanceFrequency string   `json:"maintenance_frequency,omitempty"`
	OperatingEnvironment string   `json:"operating_environment,omitempty"`
	UtilizationRate      *float64 `json:"utilization_rate,omitempty"`
}

type consequenceInputs struct {
	Safety struct {
		Impact *float64 `json:"impact,omitempty"`
	} `json:"safety"`
	Operational struct {
		DowntimeDays *float64 `json:"downtime_days,omitempty"`
	} `json:"operational"`
	Financial struct {
		RepairCost *float64 `json:"repair_cost,omitempty"`
	} `json:"financial"`
}

type inputsPayload struct {
	Reliability reliabilityInputs `json:"reliability"`
	Consequence consequenceInputs `json:"consequence"`
}

func main() {
	csvPath := flag.String("csv", "assets.csv", "path to asset CSV export")
	apiURL := flag.String("api", "http://localhost:8700", "Atlas API base URL")
	actor := flag.String("actor", "system", "X-Actor-ID header value")
	assess := flag.Bool("assess", true, "run an assessment after loading each asset's inputs")
	dryRun := flag.Bool("dry-run", false, "print payloads without posting")
	flag.Parse()

	f, err := os.Open(*csvPath)
	if err != nil {
		log.Fatalf("open csv: %v", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		log.Fatalf("read header: %v", err)
	}
	col := map[string]int{}
	for i, name := range header {
		col[strings.TrimSpace(strings.ToLower(name))] = i
	}
	if _, ok := col["asset_id"]; !ok {
		log.Fatal("csv is missing the asset_id column")
	}

	client := &http.Client{}
	loaded, assessed, skipped := 0, 0, 0
	line := 1
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			log.Printf("skip line %d: %v", line, err)
			skipped++
			continue
		}

		cell := func(name string) string {
			i, ok := col[name]
			if !ok || i >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[i])
		}
		num := func(name string) *float64 {
			s := cell(name)
			if s == "" {
				return nil
			}
			v, err := strconv.ParseFloat(s, 64)
			if err != nil {
				log.Printf("line %d: bad %s %q, treating as absent", line, name, s)
				return nil
			}
			return &v
		}

		assetID := cell("asset_id")
		if assetID == "" {
			log.Printf("skip line %d: empty asset_id", line)
			skipped++
			continue
		}

		var payload inputsPayload
		payload.Reliability = reliabilityInputs{
			EquipmentType:        cell("equipment_type"),
			AgeYears:             num("age_years"),
			ExpectedUsefulLife:   num("expected_useful_life"),
			ConditionIndex:       num("condition_index"),
			DefectSeverity:       cell("defect_severity"),
			MaintenanceFrequency: cell("maintenance_frequency"),
			OperatingEnvironment: cell("environment"),
			UtilizationRate:      num("utilization"),
		}
		payload.Consequence.Safety.Impact = num("safety")
		payload.Consequence.Operational.DowntimeDays = num("downtime_days")
		payload.Consequence.Financial.RepairCost = num("repair_cost")

		if *dryRun {
			body, _ := json.MarshalIndent(payload, "", "  ")
			fmt.Printf("--- %s\n%s\n", assetID, body)
			loaded++
			continue
		}

		if !post(client, "PUT", fmt.Sprintf("%s/api/v1/assets/%s/inputs", *apiURL, assetID), *actor, payload) {
			log.Printf("skip %s: inputs rejected", assetID)
			skipped++
			continue
		}
		loaded++

		if *assess {
			if post(client, "POST", fmt.Sprintf("%s/api/v1/assets/%s/assess", *apiURL, assetID), *actor, nil) {
				assessed++
			} else {
				log.Printf("assess failed for %s", assetID)
			}
		}
	}

	log.Printf("done: %d loaded, %d assessed, %d skipped", loaded, assessed, skipped)
}

func post(client *http.Client, method, url, actor string, payload any) bool {
	var body io.Reader
	if payload != nil {
		b, _ := json.Marshal(payload)
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, url, body)
	if err != nil {
		log.Printf("%s %s: %v", method, url, err)
		return false
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Actor-ID", actor)

	resp, err := client.Do(req)
	if err != nil {
		log.Printf("%s %s: %v", method, url, err)
		return false
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		log.Printf("%s %s: status %d", method, url, resp.StatusCode)
		return false
	}
	return true
}

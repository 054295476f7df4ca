// relaysim is a development stand-in for the ledger relay. It serves
// deterministic stage sequences and history fixtures so the wallet flows
// can be exercised without a real network.
package main

import (
	"encoding/json"
	"flag"
	"log"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/loyaltyware/walletcore/internal/domain"
)

type server struct {
	log *slog.Logger
}

func main() {
	addr := flag.String("addr", ":8080", "listen address")
	flag.Parse()

	s := &server{log: slog.New(slog.NewTextHandler(os.Stderr, nil))}

	r := mux.NewRouter()
	r.HandleFunc("/v1/link/register", s.handleLinkRegister).Methods(http.MethodPost)
	r.HandleFunc("/v1/link/submit", s.handleLinkSubmit).Methods(http.MethodPost)
	r.HandleFunc("/v1/ledger/unpayable", s.handleUnpayable).Methods(http.MethodPost)
	r.HandleFunc("/v1/ledger/payable", s.handlePayable).Methods(http.MethodPost)
	r.HandleFunc("/v1/ledger/summary/{address}", s.handleSummary).Methods(http.MethodGet)
	r.HandleFunc("/v1/ledger/transfer", s.handleTransfer).Methods(http.MethodPost)
	r.HandleFunc("/v1/ledger/main-transfers/{address}", s.handleMainTransfers).Methods(http.MethodGet)
	r.HandleFunc("/v1/shop/add", s.handleShopAdd).Methods(http.MethodPost)
	r.HandleFunc("/v1/shop/task/{taskId}/approve", s.handleApprove).Methods(http.MethodPost)
	r.HandleFunc("/v1/shop/task/{taskId}", s.handleTaskDetail).Methods(http.MethodGet)
	r.HandleFunc("/v1/shop/{shopId}/estimated-provide", s.handleEstimatedProvide).Methods(http.MethodGet)
	r.HandleFunc("/v1/shop/{shopId}/trades", s.handleTrades).Methods(http.MethodGet)

	s.log.Info("relay simulator listening", "addr", *addr)
	if err := http.ListenAndServe(*addr, r); err != nil {
		log.Fatalf("relaysim: %v", err)
	}
}

func (s *server) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error("encode response", "err", err)
	}
}

func (s *server) writeStages(w http.ResponseWriter, stages []domain.OperationStage) {
	s.writeJSON(w, map[string][]domain.OperationStage{"stages": stages})
}

func (s *server) handleLinkRegister(w http.ResponseWriter, r *http.Request) {
	s.writeStages(w, []domain.OperationStage{
		{Key: domain.StagePrepared},
		{Key: domain.StageRequested, RequestID: uuid.NewString()},
	})
}

func (s *server) handleLinkSubmit(w http.ResponseWriter, r *http.Request) {
	s.writeStages(w, []domain.OperationStage{
		{Key: domain.StagePrepared},
		{Key: domain.StageAccepted},
	})
}

func (s *server) handleUnpayable(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, map[string]string{"balance": "12500000000000"})
}

func (s *server) handlePayable(w http.ResponseWriter, r *http.Request) {
	s.writeStages(w, []domain.OperationStage{
		{Key: domain.StagePrepared},
		{Key: domain.StageSent, TxHash: "0x" + uuid.NewString()},
		{Key: domain.StageDone},
	})
}

func (s *server) handleSummary(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, domain.Summary{
		TokenName:        "Loyalty Token",
		TokenSymbol:      "LYT",
		Currency:         "krw",
		MainChainBalance: "5000000000000000000",
		LedgerBalance:    "12000000000000000000",
		TransferFee:      "100000000000000000",
	})
}

func (s *server) handleTransfer(w http.ResponseWriter, r *http.Request) {
	s.writeStages(w, []domain.OperationStage{
		{Key: domain.StagePrepared},
		{Key: domain.StageSent, TxHash: "0x" + uuid.NewString()},
		{Key: domain.StageDone},
	})
}

func (s *server) handleShopAdd(w http.ResponseWriter, r *http.Request) {
	s.writeStages(w, []domain.OperationStage{
		{Key: domain.StagePrepared},
		{Key: domain.StageSent, TxHash: "0x" + uuid.NewString()},
		{Key: domain.StageDone},
	})
}

func (s *server) handleApprove(w http.ResponseWriter, r *http.Request) {
	s.writeStages(w, []domain.OperationStage{
		{Key: domain.StagePrepared},
		{Key: domain.StageSent, TxHash: "0x" + uuid.NewString()},
		{Key: domain.StageApproved},
	})
}

func (s *server) handleTaskDetail(w http.ResponseWriter, r *http.Request) {
	taskID := mux.Vars(r)["taskId"]
	s.writeJSON(w, domain.ShopUpdateTask{
		TaskID:    taskID,
		ShopID:    "0x" + uuid.NewString(),
		Name:      "Corner Cafe",
		Currency:  "krw",
		Timestamp: time.Now().Unix(),
		Timeout:   300,
	})
}

func (s *server) handleEstimatedProvide(w http.ResponseWriter, r *http.Request) {
	now := time.Now().Unix()
	s.writeJSON(w, map[string][]domain.ScheduledRecord{"items": {
		{PurchaseID: "P-1001", ProvidedAmount: "2500000000000", Currency: "krw", Timestamp: now + 3600},
		{PurchaseID: "P-1002", ProvidedAmount: "7500000000000", Currency: "krw", Timestamp: now + 7200},
	}})
}

func (s *server) handleTrades(w http.ResponseWriter, r *http.Request) {
	now := time.Now().Unix()
	s.writeJSON(w, map[string][]domain.TradeRecord{"items": {
		{ID: uuid.NewString(), Action: domain.TradeActionProvide, ProvidedAmount: "10000000000000", Increase: "2500000000000", Currency: "krw", BlockTimestamp: now - 600},
		{ID: uuid.NewString(), Action: domain.TradeActionUse, Increase: "1500000000000", Currency: "krw", BlockTimestamp: now - 1200},
		{ID: uuid.NewString(), Action: domain.TradeActionUse, Cancel: true, Increase: "500000000000", Currency: "krw", BlockTimestamp: now - 1800},
		{ID: uuid.NewString(), Action: domain.TradeActionOpenSettlement, Increase: "9000000000000", Currency: "krw", BlockTimestamp: now - 2400},
		{ID: uuid.NewString(), Action: domain.TradeActionCloseSettlement, Increase: "9000000000000", Currency: "krw", BlockTimestamp: now - 3000},
	}})
}

func (s *server) handleMainTransfers(w http.ResponseWriter, r *http.Request) {
	address := mux.Vars(r)["address"]
	now := time.Now().Unix()
	s.writeJSON(w, map[string][]domain.MainChainTransfer{"items": {
		{From: address, To: "0x52f9a87b2e3c", Value: "1000000000000000000", BlockTimestamp: now - 86400},
		{From: "0x9a14cc03d7b1", To: address, Value: "250000000000000000", BlockTimestamp: now - 172800},
	}})
}

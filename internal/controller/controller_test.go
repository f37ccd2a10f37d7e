package controller_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/dwarvesf/crypto-bookkeeper/internal/apperror"
	"github.com/dwarvesf/crypto-bookkeeper/internal/controller"
	"github.com/dwarvesf/crypto-bookkeeper/internal/model"
	"github.com/dwarvesf/crypto-bookkeeper/internal/utils/config"
	"github.com/dwarvesf/crypto-bookkeeper/internal/utils/webhook"
)

var _ = Describe("Analyse", func() {
	var (
		ctx context.Context
		h   *harness
	)

	BeforeEach(func() {
		ctx = context.Background()
		h = newHarness()
		h.explorer.txs[hashA] = consultingPayment(hashA)
		h.model.reply = func(context.Context, string) (string, error) { return consultingReply, nil }
	})

	It("produces valued entries with a synthesised fee and persists them", func() {
		res, err := h.ctrl.Analyse(ctx, controller.AnalyseRequest{
			Hash:        hashA,
			Description: "Payment for consulting",
			UserID:      userID,
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Transaction.Category).To(Equal(model.CategoryOutgoingTransfer))
		Expect(res.Entries).To(HaveLen(2))

		main := res.Entries[0]
		Expect(main.AccountDebit).To(Equal("Consulting Expense"))
		Expect(main.AccountCredit).To(Equal("Digital Assets - Ethereum"))
		Expect(main.Amount.Equal(dec("2.65"))).To(BeTrue())
		Expect(main.USDValue.Equal(dec("9015.9625"))).To(BeTrue())
		Expect(main.USDSource).To(Equal(model.USDSourceFallback))
		Expect(main.Narrative).To(Equal("Payment for consulting (≈ $9015.96 USD via fallback)"))
		Expect(main.TransactionHash).To(Equal(hashA))
		Expect(*main.TransactionDate).To(Equal(blockTime))
		Expect(main.Metadata).To(HaveKeyWithValue("debit_account_code", "6001"))

		fee := res.Entries[1]
		Expect(fee.EntryType).To(Equal(model.EntryTypeFee))
		Expect(fee.AccountDebit).To(Equal("Transaction Fees"))
		Expect(fee.AccountCredit).To(Equal("Digital Assets - Ethereum"))
		Expect(fee.Amount.Equal(dec("0.00042"))).To(BeTrue())

		Expect(res.Saved).To(BeTrue())
		Expect(res.Persisted.Transaction.Status).To(Equal(model.TransactionStatusProcessed))
		Expect(res.Persisted.Entries).To(HaveLen(2))
		Expect(h.count(&model.Transaction{})).To(Equal(int64(1)))

		var rows []*model.JournalEntry
		Expect(h.db.Order("id ASC").Find(&rows).Error).NotTo(HaveOccurred())
		Expect(rows).To(HaveLen(2))
		Expect(rows[0].Source).To(Equal(model.EntrySourceAISingle))
		Expect(rows[0].EntryDate.Format("2006-01-02")).To(Equal("2024-05-01"))
		Expect(rows[1].EntryType).To(Equal(model.EntryTypeFee))
		Expect(string(rows[0].Metadata)).To(ContainSubstring(`"transaction_hash":"` + hashA + `"`))
	})

	It("sends converted amounts to the model", func() {
		_, err := h.ctrl.Analyse(ctx, controller.AnalyseRequest{Hash: hashA})
		Expect(err).NotTo(HaveOccurred())

		Expect(h.model.prompts).To(HaveLen(1))
		Expect(h.model.prompts[0]).To(ContainSubstring("Native value: 2.65 ETH"))
		Expect(h.model.prompts[0]).NotTo(ContainSubstring("2650000000000000000"))
	})

	It("does not persist without a user", func() {
		res, err := h.ctrl.Analyse(ctx, controller.AnalyseRequest{Hash: hashA})
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Saved).To(BeFalse())
		Expect(h.count(&model.Transaction{})).To(BeZero())
	})

	It("rejects a hash the user already recorded and returns the stored entries", func() {
		_, err := h.ctrl.Analyse(ctx, controller.AnalyseRequest{Hash: hashA, UserID: userID})
		Expect(err).NotTo(HaveOccurred())

		_, err = h.ctrl.Analyse(ctx, controller.AnalyseRequest{Hash: hashA, UserID: userID})
		Expect(apperror.KindOf(err)).To(Equal(apperror.KindConflict))

		appErr, ok := apperror.As(err)
		Expect(ok).To(BeTrue())
		Expect(appErr.Existing).To(HaveLen(2))
		Expect(h.model.calls()).To(Equal(1))
		Expect(h.count(&model.Transaction{})).To(Equal(int64(1)))
		Expect(h.count(&model.JournalEntry{})).To(Equal(int64(2)))
	})

	It("lets another user record the same hash", func() {
		_, err := h.ctrl.Analyse(ctx, controller.AnalyseRequest{Hash: hashA, UserID: userID})
		Expect(err).NotTo(HaveOccurred())
		_, err = h.ctrl.Analyse(ctx, controller.AnalyseRequest{Hash: hashA, UserID: "user-2"})
		Expect(err).NotTo(HaveOccurred())
		Expect(h.count(&model.Transaction{})).To(Equal(int64(2)))
	})

	It("rejects amounts beyond the storable range before writing anything", func() {
		h.model.reply = func(context.Context, string) (string, error) {
			return `[{"accountDebit":"Consulting Expense","accountCredit":"Digital Assets - Ethereum","amount":"2000000000000","currency":"ETH","narrative":"typo"}]`, nil
		}

		_, err := h.ctrl.Analyse(ctx, controller.AnalyseRequest{Hash: hashA, UserID: userID})
		Expect(apperror.KindOf(err)).To(Equal(apperror.KindOverflow))
		Expect(h.count(&model.Transaction{})).To(BeZero())
		Expect(h.count(&model.JournalEntry{})).To(BeZero())
	})

	It("records only the fee of a failed transaction without asking the model", func() {
		h.explorer.txs[hashF] = failedCall(hashF)

		res, err := h.ctrl.Analyse(ctx, controller.AnalyseRequest{Hash: hashF, UserID: userID})
		Expect(err).NotTo(HaveOccurred())
		Expect(h.model.calls()).To(BeZero())
		Expect(res.Transaction.Category).To(Equal(model.CategoryFailedTransaction))
		Expect(res.Entries).To(HaveLen(1))
		Expect(res.Entries[0].EntryType).To(Equal(model.EntryTypeFee))
		Expect(res.Entries[0].Amount.Equal(dec("0.001"))).To(BeTrue())
		Expect(res.Saved).To(BeTrue())
	})

	It("keeps the fee entry the model already produced", func() {
		h.model.reply = func(context.Context, string) (string, error) {
			return `[
				{"accountDebit":"Consulting Expense","accountCredit":"Digital Assets - Ethereum","amount":2.65,"currency":"ETH","narrative":"Consulting"},
				{"accountDebit":"Transaction Fees","accountCredit":"Digital Assets - Ethereum","amount":0.00042,"currency":"ETH","narrative":"Gas","entryType":"fee"}
			]`, nil
		}

		res, err := h.ctrl.Analyse(ctx, controller.AnalyseRequest{Hash: hashA})
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Entries).To(HaveLen(2))
		Expect(res.Entries[1].Narrative).To(HavePrefix("Gas"))
	})

	It("surfaces unparseable model output and allows a retry", func() {
		h.model.reply = func(context.Context, string) (string, error) {
			return "I am not able to classify this transaction.", nil
		}

		_, err := h.ctrl.Analyse(ctx, controller.AnalyseRequest{Hash: hashA, UserID: userID})
		Expect(apperror.KindOf(err)).To(Equal(apperror.KindParse))
		appErr, _ := apperror.As(err)
		Expect(appErr.Raw).To(ContainSubstring("not able to classify"))

		var header model.Transaction
		Expect(h.db.First(&header).Error).NotTo(HaveOccurred())
		Expect(header.Status).To(Equal(model.TransactionStatusFailed))

		h.model.reply = func(context.Context, string) (string, error) { return consultingReply, nil }
		res, err := h.ctrl.Analyse(ctx, controller.AnalyseRequest{Hash: hashA, UserID: userID})
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Persisted.Transaction.ID).To(Equal(header.ID))
		Expect(res.Persisted.Transaction.Status).To(Equal(model.TransactionStatusProcessed))
		Expect(h.count(&model.Transaction{})).To(Equal(int64(1)))
	})

	It("rejects a malformed hash", func() {
		_, err := h.ctrl.Analyse(ctx, controller.AnalyseRequest{Hash: "0x1234"})
		Expect(apperror.KindOf(err)).To(Equal(apperror.KindValidation))
	})

	It("reports an unknown hash as not found", func() {
		_, err := h.ctrl.Analyse(ctx, controller.AnalyseRequest{Hash: hashB})
		Expect(apperror.KindOf(err)).To(Equal(apperror.KindNotFound))
	})

	It("types model outages as upstream failures", func() {
		h.model.reply = func(context.Context, string) (string, error) { return "", errors.New("503 overloaded") }

		_, err := h.ctrl.Analyse(ctx, controller.AnalyseRequest{Hash: hashA})
		Expect(apperror.KindOf(err)).To(Equal(apperror.KindUpstreamUnavailable))
	})

	It("creates accounts the chart does not have", func() {
		h.model.reply = func(context.Context, string) (string, error) {
			return `[{"accountDebit":"Legal Expense","accountCredit":"Digital Assets - Ethereum","amount":"2.65","currency":"ETH","narrative":"Legal retainer"}]`, nil
		}

		res, err := h.ctrl.Analyse(ctx, controller.AnalyseRequest{Hash: hashA})
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Entries[0].AccountDebit).To(Equal("Legal Expense"))
		Expect(res.Entries[0].RequiresAccountCreation).To(BeTrue())

		var acc model.Account
		Expect(h.db.Where("name = ?", "Legal Expense").First(&acc).Error).NotTo(HaveOccurred())
		Expect(acc.Type).To(Equal(model.AccountTypeExpense))
	})

	It("dates entries with a date taken from the request", func() {
		extracted := time.Date(2024, 4, 30, 0, 0, 0, 0, time.UTC)
		res, err := h.ctrl.Analyse(ctx, controller.AnalyseRequest{Hash: hashA, ExtractedDate: &extracted})
		Expect(err).NotTo(HaveOccurred())
		for _, e := range res.Entries {
			Expect(*e.TransactionDate).To(Equal(extracted))
		}
	})
})

var _ = Describe("PersistEntries", func() {
	var (
		ctx context.Context
		h   *harness
	)

	BeforeEach(func() {
		ctx = context.Background()
		h = newHarness()
	})

	entry := func(amount string) *model.ProposedEntry {
		return &model.ProposedEntry{
			AccountDebit:  "Consulting Expense",
			AccountCredit: "Cash",
			Amount:        dec(amount),
			Currency:      "USD",
			Narrative:     "Manual",
			Confidence:    1,
			EntryType:     model.EntryTypeMain,
		}
	}

	It("validates the request", func() {
		_, err := h.ctrl.PersistEntries(ctx, controller.PersistRequest{Hash: hashA, Entries: []*model.ProposedEntry{entry("1")}})
		Expect(apperror.KindOf(err)).To(Equal(apperror.KindValidation))

		_, err = h.ctrl.PersistEntries(ctx, controller.PersistRequest{UserID: userID, Hash: hashA})
		Expect(apperror.KindOf(err)).To(Equal(apperror.KindValidation))
	})

	It("keeps one header per user and hash regardless of hash case", func() {
		req := controller.PersistRequest{
			UserID:  userID,
			Hash:    hashA,
			Entries: []*model.ProposedEntry{entry("10"), entry("5")},
			Source:  model.EntrySourceManual,
		}
		res, err := h.ctrl.PersistEntries(ctx, req)
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Entries).To(HaveLen(2))
		Expect(res.Entries[0].USDSource).To(Equal(model.USDSourceNone))

		req.Hash = strings.ToUpper(hashA)
		_, err = h.ctrl.PersistEntries(ctx, req)
		Expect(apperror.KindOf(err)).To(Equal(apperror.KindConflict))
		Expect(h.count(&model.JournalEntry{})).To(Equal(int64(2)))
	})

	It("checks the valuation as well as the amount", func() {
		e := entry("1")
		usd := dec("1000000000000")
		e.USDValue = &usd

		_, err := h.ctrl.PersistEntries(ctx, controller.PersistRequest{UserID: userID, Hash: hashA, Entries: []*model.ProposedEntry{e}})
		Expect(apperror.KindOf(err)).To(Equal(apperror.KindOverflow))
	})
})

var _ = Describe("AnalyseWallet", func() {
	var (
		ctx context.Context
		h   *harness
	)

	bulkReply := func(_ context.Context, prompt string) (string, error) {
		switch {
		case strings.Contains(prompt, `classified as "outgoing_transfer"`):
			return fmt.Sprintf(`[
				{"transactionHash": %q, "category": "outgoing_transfer", "entries": [
					{"accountDebit":"Consulting Expense","accountCredit":"Digital Assets - Ethereum","amount":"1.5","currency":"ETH","narrative":"Consulting April"}]},
				{"transactionHash": %q, "category": "outgoing_transfer", "entries": [
					{"accountDebit":"Consulting Expense","accountCredit":"Digital Assets - Ethereum","amount":"0.75","currency":"ETH","narrative":"Consulting May"}]}
			]`, hashA, hashB), nil
		case strings.Contains(prompt, `classified as "token_received"`):
			return `[{"accountDebit":"Digital Assets - Tether","accountCredit":"Service Revenue","amount":"500","currency":"USDT","narrative":"Payment from client"}]`, nil
		}
		return "[]", nil
	}

	wallet := func() []*model.TransactionRecord {
		a := consultingPayment(hashA)
		a.NativeAmount = dec("1.5")
		b := consultingPayment(hashB)
		b.NativeAmount = dec("0.75")
		b.Timestamp = blockTime.Add(24 * time.Hour)
		return []*model.TransactionRecord{a, usdtReceipt(hashC), b}
	}

	BeforeEach(func() {
		ctx = context.Background()
		h = newHarness()
		h.explorer.wallet = wallet()
		h.model.reply = bulkReply
	})

	It("groups by category, analyses each group once and persists per transaction", func() {
		progress := make(chan model.Progress, 32)

		res, err := h.ctrl.AnalyseWallet(ctx, controller.WalletRequest{Address: userAddr, UserID: userID}, progress)
		close(progress)
		Expect(err).NotTo(HaveOccurred())

		Expect(res.RunID).NotTo(BeEmpty())
		Expect(res.Analysis.Categories).To(HaveKeyWithValue(model.CategoryOutgoingTransfer, 2))
		Expect(res.Analysis.Categories).To(HaveKeyWithValue(model.CategoryTokenReceived, 1))
		Expect(h.model.calls()).To(Equal(2))

		Expect(res.ProcessingResults.Failed).To(BeEmpty())
		Expect(res.ProcessingResults.Successful).To(HaveLen(2))
		Expect(res.ProcessingResults.Successful[0].Category).To(Equal(model.CategoryOutgoingTransfer))
		Expect(res.ProcessingResults.Successful[0].Hashes).To(Equal([]string{hashA, hashB}))

		// A main, A fee, B main, B fee, C main; the user did not pay C's gas
		Expect(res.Entries).To(HaveLen(5))
		Expect(res.Entries[0].TransactionHash).To(Equal(hashA))
		Expect(res.Entries[1].EntryType).To(Equal(model.EntryTypeFee))
		Expect(res.Entries[2].TransactionHash).To(Equal(hashB))
		Expect(res.Entries[4].TransactionHash).To(Equal(hashC))
		Expect(res.Entries[4].USDValue.Equal(dec("500"))).To(BeTrue())
		Expect(res.Entries[0].Metadata).To(HaveKeyWithValue("original_transaction_hash", hashA))

		Expect(res.Saved).To(BeTrue())
		Expect(h.count(&model.Transaction{})).To(Equal(int64(3)))
		Expect(h.count(&model.JournalEntry{})).To(Equal(int64(5)))

		var phases []model.ProgressPhase
		for p := range progress {
			phases = append(phases, p.Phase)
		}
		Expect(phases).To(HaveExactElements(
			model.PhaseFetching, model.PhaseCategorising, model.PhaseAnalysing,
			model.PhaseEnhancing, model.PhasePersisting, model.PhaseDone,
		))
	})

	It("returns partial success when one group fails", func() {
		h.model.reply = func(ctx context.Context, prompt string) (string, error) {
			if strings.Contains(prompt, `classified as "token_received"`) {
				return "", errors.New("quota exceeded")
			}
			return bulkReply(ctx, prompt)
		}

		res, err := h.ctrl.AnalyseWallet(ctx, controller.WalletRequest{Address: userAddr, UserID: userID}, nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(res.ProcessingResults.Successful).To(HaveLen(1))
		Expect(res.ProcessingResults.Failed).To(HaveLen(1))

		failed := res.ProcessingResults.Failed[0]
		Expect(failed.Category).To(Equal(model.CategoryTokenReceived))
		Expect(failed.Hashes).To(Equal([]string{hashC}))
		Expect(failed.Kind).To(Equal(apperror.KindUpstreamUnavailable))
		Expect(res.Entries).To(HaveLen(4))
		Expect(h.count(&model.Transaction{})).To(Equal(int64(2)))
	})

	It("skips transactions the user already recorded", func() {
		h.explorer.txs[hashA] = consultingPayment(hashA)
		h.model.reply = func(ctx context.Context, prompt string) (string, error) {
			if strings.Contains(prompt, "TRANSACTION\n") {
				return consultingReply, nil
			}
			return bulkReply(ctx, prompt)
		}
		_, err := h.ctrl.Analyse(ctx, controller.AnalyseRequest{Hash: hashA, UserID: userID})
		Expect(err).NotTo(HaveOccurred())

		res, err := h.ctrl.AnalyseWallet(ctx, controller.WalletRequest{Address: userAddr, UserID: userID}, nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(res.ProcessingResults.Skipped).To(Equal([]string{hashA}))
		Expect(res.Analysis.Selected).To(Equal(2))
		Expect(h.count(&model.Transaction{})).To(Equal(int64(3)))
	})

	It("filters by the requested categories", func() {
		res, err := h.ctrl.AnalyseWallet(ctx, controller.WalletRequest{
			Address:    userAddr,
			Categories: []model.Category{model.CategoryTokenReceived},
		}, nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(h.model.calls()).To(Equal(1))
		Expect(res.Entries).To(HaveLen(1))
		Expect(res.Saved).To(BeFalse())
	})

	It("rejects a malformed address", func() {
		_, err := h.ctrl.AnalyseWallet(ctx, controller.WalletRequest{Address: "0x123"}, nil)
		Expect(apperror.KindOf(err)).To(Equal(apperror.KindValidation))
	})

	It("persists what was produced before the deadline", func() {
		h = newHarness(func(cfg *config.AppConfig, _ *controller.Deps) {
			cfg.Pipeline.BulkTimeout = 100 * time.Millisecond
		})
		h.explorer.wallet = []*model.TransactionRecord{consultingPayment(hashA), failedCall(hashF)}
		h.model.reply = func(ctx context.Context, _ string) (string, error) {
			<-ctx.Done()
			return "", ctx.Err()
		}

		res, err := h.ctrl.AnalyseWallet(ctx, controller.WalletRequest{Address: userAddr, UserID: userID}, nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(res.TimedOut).To(BeTrue())
		Expect(res.ProcessingResults.Failed).To(HaveLen(1))
		Expect(res.ProcessingResults.Failed[0].Category).To(Equal(model.CategoryOutgoingTransfer))
		Expect(res.Entries).To(HaveLen(1))
		Expect(res.Entries[0].TransactionHash).To(Equal(hashF))
		Expect(res.Saved).To(BeTrue())
		Expect(h.count(&model.JournalEntry{})).To(Equal(int64(1)))
	})

	It("notifies the run webhook", func() {
		received := make(chan webhook.BulkRunSummary, 1)
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var s webhook.BulkRunSummary
			_ = json.NewDecoder(r.Body).Decode(&s)
			received <- s
			w.WriteHeader(http.StatusNoContent)
		}))
		DeferCleanup(srv.Close)

		h = newHarness(func(cfg *config.AppConfig, _ *controller.Deps) {
			cfg.Webhook.BulkRunURL = srv.URL
		})
		h.explorer.wallet = wallet()
		h.model.reply = bulkReply

		res, err := h.ctrl.AnalyseWallet(ctx, controller.WalletRequest{Address: userAddr}, nil)
		Expect(err).NotTo(HaveOccurred())

		var summary webhook.BulkRunSummary
		Eventually(received).Should(Receive(&summary))
		Expect(summary.RunID).To(Equal(res.RunID))
		Expect(summary.Transactions).To(Equal(3))
		Expect(summary.EntriesCreated).To(Equal(5))
	})
})

var _ = Describe("Chat", func() {
	var (
		ctx context.Context
		h   *harness
	)

	BeforeEach(func() {
		ctx = context.Background()
		h = newHarness()
		h.explorer.txs[hashA] = consultingPayment(hashA)
		h.model.reply = func(context.Context, string) (string, error) { return consultingReply, nil }
	})

	It("requires a message", func() {
		_, err := h.ctrl.Chat(ctx, controller.ChatRequest{Message: "  "})
		Expect(apperror.KindOf(err)).To(Equal(apperror.KindValidation))
	})

	It("persists a transaction named in the message and flags it as saved", func() {
		msg := fmt.Sprintf("Record %s, I paid our consultant on 2024-05-02", hashA)

		resp, err := h.ctrl.Chat(ctx, controller.ChatRequest{Message: msg, UserID: userID})
		Expect(err).NotTo(HaveOccurred())
		Expect(resp.AlreadySaved).To(BeTrue())
		Expect(resp.JournalEntries).To(HaveLen(2))
		Expect(resp.JournalEntries[0].TransactionDate.Format("2006-01-02")).To(Equal("2024-05-02"))

		var row model.JournalEntry
		Expect(h.db.First(&row).Error).NotTo(HaveOccurred())
		Expect(row.Source).To(Equal(model.EntrySourceAIChat))

		resp, err = h.ctrl.Chat(ctx, controller.ChatRequest{Message: msg, UserID: userID})
		Expect(err).NotTo(HaveOccurred())
		Expect(resp.AlreadySaved).To(BeTrue())
		Expect(resp.Response).To(ContainSubstring("already recorded"))
		Expect(resp.JournalEntries).To(HaveLen(2))
		Expect(h.count(&model.JournalEntry{})).To(Equal(int64(2)))
	})

	It("answers general questions without saving", func() {
		h.model.reply = func(context.Context, string) (string, error) {
			return "```json\n" + `{"response": "Book it as service revenue.", "thinking": "cash receipt",
				"suggestions": ["Attach the invoice"],
				"journalEntries": [{"accountDebit": "Cash", "accountCredit": "Service Revenue",
				"amount": "1,200", "currency": "USD", "narrative": "Invoice 42", "confidence": 0.85}]}` + "\n```", nil
		}

		resp, err := h.ctrl.Chat(ctx, controller.ChatRequest{Message: "I received $1,200 for invoice 42 on 2024-03-03", UserID: userID})
		Expect(err).NotTo(HaveOccurred())
		Expect(resp.AlreadySaved).To(BeFalse())
		Expect(resp.Response).To(Equal("Book it as service revenue."))
		Expect(resp.Suggestions).To(ContainElement("Attach the invoice"))
		Expect(resp.JournalEntries).To(HaveLen(1))
		Expect(resp.JournalEntries[0].Amount.Equal(dec("1200"))).To(BeTrue())
		Expect(resp.JournalEntries[0].USDSource).To(Equal(model.USDSourceNone))
		Expect(resp.JournalEntries[0].TransactionDate.Format("2006-01-02")).To(Equal("2024-03-03"))
		Expect(h.model.prompts[0]).To(ContainSubstring("- Amount: 1200 USD"))
		Expect(h.count(&model.JournalEntry{})).To(BeZero())
	})

	It("routes wallet requests to the bulk path", func() {
		h.explorer.wallet = []*model.TransactionRecord{failedCall(hashF)}

		resp, err := h.ctrl.Chat(ctx, controller.ChatRequest{Message: "please analyze wallet " + userAddr, UserID: userID})
		Expect(err).NotTo(HaveOccurred())
		Expect(resp.AlreadySaved).To(BeTrue())
		Expect(resp.JournalEntries).To(HaveLen(1))
		Expect(h.model.calls()).To(BeZero())
	})
})

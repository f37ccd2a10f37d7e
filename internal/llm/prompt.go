package llm

import (
	"bytes"
	"embed"
	"strings"
	"text/template"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/dwarvesf/crypto-bookkeeper/internal/model"
)

//go:embed templates/*.tmpl templates/guidance.yaml
var templateFS embed.FS

var templates = template.Must(template.New("prompts").
	Funcs(template.FuncMap{"inc": func(i int) int { return i + 1 }}).
	ParseFS(templateFS, "templates/*.tmpl"))

type Guidance struct {
	Standard string `yaml:"standard"`
	Text     string `yaml:"text"`
}

var guidance = mustLoadGuidance()

func mustLoadGuidance() map[string]Guidance {
	data, err := templateFS.ReadFile("templates/guidance.yaml")
	if err != nil {
		panic(err)
	}
	out := map[string]Guidance{}
	if err := yaml.Unmarshal(data, &out); err != nil {
		panic(err)
	}
	return out
}

// GuidanceFor returns the IFRS guidance block for category, or the default.
func GuidanceFor(category model.Category) Guidance {
	if g, ok := guidance[string(category)]; ok {
		return g
	}
	return guidance["default"]
}

// txView is what the templates see of a record. Every amount is already
// decimal-converted.
type txView struct {
	Hash      string
	From      string
	To        string
	Timestamp string
	Status    string
	Direction string
	Category  string
	Amount    string
	Currency  string
	GasFee    string
	Method    string
	Token     *tokenView
}

type tokenView struct {
	Symbol   string
	Name     string
	Amount   string
	From     string
	To       string
	Contract string
}

func newTxView(r *model.TransactionRecord) txView {
	v := txView{
		Hash:      r.Hash,
		From:      r.From,
		To:        r.To,
		Timestamp: r.Timestamp.UTC().Format(time.RFC3339),
		Status:    string(r.Status),
		Direction: string(r.Direction),
		Category:  string(r.Category),
		Amount:    r.NativeAmount.String(),
		Currency:  r.NetworkCurrency,
		GasFee:    r.GasFeeNative.String(),
		Method:    r.Method,
	}
	if t := r.TokenTransfer; t != nil {
		v.Token = &tokenView{
			Symbol:   t.Symbol,
			Name:     t.Name,
			Amount:   t.Amount.String(),
			From:     t.From,
			To:       t.To,
			Contract: t.ContractAddress,
		}
	}
	return v
}

func render(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", errors.Wrapf(err, "render %s", name)
	}
	return strings.TrimSpace(buf.String()), nil
}

func systemPrompt() string {
	s, err := render("system.tmpl", nil)
	if err != nil {
		panic(err)
	}
	return s
}

func singlePrompt(in TransactionPrompt) (string, error) {
	return render("single.tmpl", struct {
		Chart       string
		Tx          txView
		Description string
		Guidance    Guidance
	}{
		Chart:       in.Chart,
		Tx:          newTxView(in.Record),
		Description: strings.TrimSpace(in.Description),
		Guidance:    GuidanceFor(in.Record.Category),
	})
}

func bulkPrompt(in CategoryPrompt) (string, error) {
	txs := make([]txView, 0, len(in.Records))
	for _, r := range in.Records {
		txs = append(txs, newTxView(r))
	}
	return render("bulk.tmpl", struct {
		Chart    string
		Address  string
		Category string
		Txs      []txView
		Guidance Guidance
	}{
		Chart:    in.Chart,
		Address:  in.Address,
		Category: string(in.Category),
		Txs:      txs,
		Guidance: GuidanceFor(in.Category),
	})
}

func chatPrompt(in ChatPrompt) (string, error) {
	return render("chat.tmpl", in)
}

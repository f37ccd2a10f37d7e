package explorer

import (
	"bytes"
	"encoding/json"
)

// flexString decodes a JSON string, number, null or an object carrying a
// "value" field into its string form. The explorer uses all four shapes for
// amounts depending on endpoint and version.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*f = ""
		return nil
	}

	switch b[0] {
	case '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexString(s)
	case '{':
		var obj struct {
			Value flexString `json:"value"`
		}
		if err := json.Unmarshal(b, &obj); err != nil {
			return err
		}
		*f = obj.Value
	default:
		*f = flexString(b)
	}
	return nil
}

func (f flexString) String() string { return string(f) }

// flexAddress decodes either a bare address string or {"hash": "0x.."}.
type flexAddress string

func (a *flexAddress) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*a = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*a = flexAddress(s)
		return nil
	}
	var obj struct {
		Hash string `json:"hash"`
	}
	if err := json.Unmarshal(b, &obj); err != nil {
		return err
	}
	*a = flexAddress(obj.Hash)
	return nil
}

func (a flexAddress) String() string { return string(a) }

type rawToken struct {
	Symbol      string     `json:"symbol"`
	Name        string     `json:"name"`
	Address     string     `json:"address"`
	AddressHash string     `json:"address_hash"`
	Decimals    flexString `json:"decimals"`
	Type        string     `json:"type"`
}

type rawTotal struct {
	Value    flexString `json:"value"`
	Decimals flexString `json:"decimals"`
	TokenID  flexString `json:"token_id"`
}

type rawTokenTransfer struct {
	TransactionHash string      `json:"transaction_hash"`
	TxHash          string      `json:"tx_hash"`
	From            flexAddress `json:"from"`
	To              flexAddress `json:"to"`
	Token           rawToken    `json:"token"`
	Total           rawTotal    `json:"total"`
	Timestamp       string      `json:"timestamp"`
	BlockNumber     flexString  `json:"block_number"`
	Method          flexString  `json:"method"`
}

func (t rawTokenTransfer) hash() string {
	if t.TransactionHash != "" {
		return t.TransactionHash
	}
	return t.TxHash
}

type rawTransaction struct {
	Hash           string             `json:"hash"`
	From           flexAddress        `json:"from"`
	To             flexAddress        `json:"to"`
	Value          flexString         `json:"value"`
	GasUsed        flexString         `json:"gas_used"`
	GasPrice       flexString         `json:"gas_price"`
	Timestamp      string             `json:"timestamp"`
	Status         string             `json:"status"`
	Result         string             `json:"result"`
	RawInput       string             `json:"raw_input"`
	Input          string             `json:"input"`
	Method         flexString         `json:"method"`
	Block          flexString         `json:"block"`
	BlockNumber    flexString         `json:"block_number"`
	TokenTransfers []rawTokenTransfer `json:"token_transfers"`
}

type rawInternalTransaction struct {
	TransactionHash string      `json:"transaction_hash"`
	From            flexAddress `json:"from"`
	To              flexAddress `json:"to"`
	Value           flexString  `json:"value"`
	Success         *bool       `json:"success"`
	Timestamp       string      `json:"timestamp"`
	BlockNumber     flexString  `json:"block_number"`
	Block           flexString  `json:"block"`
	Type            string      `json:"type"`
}

type itemsResponse[T any] struct {
	Items []T `json:"items"`
}

type rawAddress struct {
	Hash        string     `json:"hash"`
	CoinBalance flexString `json:"coin_balance"`
}

type errorResponse struct {
	Message string `json:"message"`
}

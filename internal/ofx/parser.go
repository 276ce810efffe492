// Package ofx reads OFX/QFX bank and credit card statements into signed
// engine transactions.
package ofx

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/aclindsa/ofxgo"

	"github.com/Veraticus/spice-insights/internal/common"
	"github.com/Veraticus/spice-insights/internal/model"
)

var (
	severityRegex = regexp.MustCompile(`(?i)<SEVERITY>(Info|Warn|Error)</SEVERITY>`)
	// Opening tags on their own line that are missing the closing bracket.
	unclosedTagRegex = regexp.MustCompile(`(?m)^(\s*<[A-Z][A-Z0-9._]*[A-Z0-9])$`)
	leadingDateRegex = regexp.MustCompile(`^\d{2}/\d{2}\s+`)
)

var processorPrefixes = []string{
	"POS PURCHASE ",
	"PURCHASE AUTHORIZED ON ",
	"DEBIT CARD PURCHASE ",
	"ACH DEBIT ",
	"CHECK CARD ",
	"VISA PURCHASE ",
	"MC PURCHASE ",
	"DEBIT PURCHASE ",
}

var genericNames = map[string]bool{
	"DEBIT":           true,
	"CREDIT":          true,
	"PURCHASE":        true,
	"PAYMENT":         true,
	"POS TRANSACTION": true,
	"CARD PURCHASE":   true,
}

// statement is one account's transaction list from either message set.
type statement struct {
	list      *ofxgo.TransactionList
	accountID string
	kind      string
}

// Parser converts OFX/QFX files into transactions.
type Parser struct {
	logger *slog.Logger
}

// NewParser creates a new OFX parser.
func NewParser(logger *slog.Logger) *Parser {
	return &Parser{logger: common.LoggerOrDefault(logger)}
}

// ParseFile parses an OFX/QFX file. Amounts keep the file's sign: debits
// are negative, credits positive.
func (p *Parser) ParseFile(ctx context.Context, reader io.Reader) ([]model.Transaction, error) {
	statements, err := p.statements(reader)
	if err != nil {
		return nil, err
	}

	var transactions []model.Transaction
	for _, stmt := range statements {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if stmt.list == nil {
			continue
		}
		for _, ofxTx := range stmt.list.Transactions {
			transactions = append(transactions, convertTransaction(ofxTx, stmt.accountID))
		}
	}

	p.logger.Info("Parsed OFX file",
		"total_transactions", len(transactions),
		"statements", len(statements))

	return transactions, nil
}

// GetAccounts returns the sorted, unique account IDs in an OFX file.
func (p *Parser) GetAccounts(_ context.Context, reader io.Reader) ([]string, error) {
	statements, err := p.statements(reader)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var accounts []string
	for _, stmt := range statements {
		if stmt.accountID == "" || seen[stmt.accountID] {
			continue
		}
		seen[stmt.accountID] = true
		accounts = append(accounts, stmt.accountID)
	}
	sort.Strings(accounts)

	return accounts, nil
}

func (p *Parser) statements(reader io.Reader) ([]statement, error) {
	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read OFX file: %w", err)
	}

	resp, err := ofxgo.ParseResponse(strings.NewReader(preprocess(string(content))))
	if err != nil {
		return nil, fmt.Errorf("failed to parse OFX file: %w", err)
	}

	var statements []statement
	for _, msg := range resp.Bank {
		if stmt, ok := msg.(*ofxgo.StatementResponse); ok {
			statements = append(statements, statement{
				kind:      "bank",
				accountID: string(stmt.BankAcctFrom.AcctID),
				list:      stmt.BankTranList,
			})
		}
	}
	for _, msg := range resp.CreditCard {
		if stmt, ok := msg.(*ofxgo.CCStatementResponse); ok {
			statements = append(statements, statement{
				kind:      "credit_card",
				accountID: string(stmt.CCAcctFrom.AcctID),
				list:      stmt.BankTranList,
			})
		}
	}

	for _, stmt := range statements {
		p.logger.Debug("Found OFX statement", "kind", stmt.kind, "account", stmt.accountID)
	}

	return statements, nil
}

// preprocess fixes common formatting issues in OFX files.
func preprocess(content string) string {
	content = strings.TrimLeft(content, " \t\r\n")
	content = severityRegex.ReplaceAllStringFunc(content, strings.ToUpper)
	return unclosedTagRegex.ReplaceAllString(content, "$1>")
}

func convertTransaction(ofxTx ofxgo.Transaction, accountID string) model.Transaction {
	amount, _ := ofxTx.TrnAmt.Float64()

	description := strings.TrimSpace(string(ofxTx.Name))
	if memo := strings.TrimSpace(string(ofxTx.Memo)); memo != "" && !strings.EqualFold(memo, description) {
		description = strings.TrimSpace(description + " " + memo)
	}

	return model.Transaction{
		ID:           string(ofxTx.FiTID),
		Date:         postedDate(ofxTx.DtPosted.Time),
		AccountID:    accountID,
		MerchantName: extractMerchantName(ofxTx),
		Description:  description,
		Amount:       common.RoundMoney(amount),
	}
}

// postedDate keeps the calendar day the bank reported, as a UTC date.
func postedDate(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// extractMerchantName prefers PAYEE, then a cleaned NAME, then MEMO when
// NAME is generic.
func extractMerchantName(tx ofxgo.Transaction) string {
	if tx.Payee != nil && tx.Payee.Name != "" {
		return strings.TrimSpace(string(tx.Payee.Name))
	}

	name := strings.TrimSpace(string(tx.Name))
	if tx.Memo != "" && genericNames[strings.ToUpper(name)] {
		name = strings.TrimSpace(string(tx.Memo))
	}

	upper := strings.ToUpper(name)
	for _, prefix := range processorPrefixes {
		if strings.HasPrefix(upper, prefix) {
			name = name[len(prefix):]
			break
		}
	}

	return strings.TrimSpace(leadingDateRegex.ReplaceAllString(name, ""))
}

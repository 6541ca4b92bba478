package services

import (
	"context"
	"log"
	"math/big"
	"strings"

	"monad-moments/models"
)

// Collaborator contracts consumed by the classifier. The gorm-backed
// services satisfy them in production; tests supply doubles.
type UserLookup interface {
	UserByWallet(address string) (*models.User, error)
}

type ContractChecker interface {
	IsContract(ctx context.Context, address string) (bool, error)
}

// MomentStore persists moments and answers the first-interaction check.
type MomentStore interface {
	CreateMoment(fields MomentFields) (*models.Moment, error)
	CheckFirstInteraction(fid int64, contractAddress string) (bool, error)
}

// Transaction is one observed transfer to classify.
type Transaction struct {
	Hash  string
	From  string
	To    string
	Value *big.Int
}

// 10 whole units at 18-decimal precision.
var highValueThreshold = new(big.Int).Mul(big.NewInt(10), weiPerEther)

var weiPerEther = new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)

// MomentClassifier turns a transaction into zero or more moments. Rules
// are evaluated independently in a fixed order; more than one may fire
// for the same transaction. The whole pipeline is best-effort: any
// collaborator failure is logged and yields no moments for that
// transaction, never an error to the caller. Moments created before the
// failing step stay persisted.
type MomentClassifier struct {
	users   UserLookup
	chain   ContractChecker
	moments MomentStore
}

func NewMomentClassifier(users UserLookup, chain ContractChecker, moments MomentStore) *MomentClassifier {
	return &MomentClassifier{users: users, chain: chain, moments: moments}
}

// ProcessTransaction classifies one transaction for the sender. A
// sender that resolves to no tracked user yields no moments.
//
// All rule predicates are evaluated against the state before this
// transaction, then the winning moments are created in rule order.
// Checking first would otherwise see the first-transaction moment
// (which carries the same contract address) and starve the
// first-interaction rule.
func (c *MomentClassifier) ProcessTransaction(ctx context.Context, tx Transaction) []models.Moment {
	from := strings.ToLower(tx.From)

	user, err := c.users.UserByWallet(from)
	if err != nil {
		log.Printf("❌ Error resolving sender %s: %v", from, err)
		return nil
	}
	if user == nil {
		return nil
	}

	// No activity recorded since account creation.
	firstTransaction := user.FirstSeen.Equal(user.LastActive)

	firstInteraction := false
	if tx.To != "" {
		isContract, err := c.chain.IsContract(ctx, tx.To)
		if err != nil {
			log.Printf("❌ Error checking contract status of %s: %v", tx.To, err)
			return nil
		}
		if isContract {
			firstInteraction, err = c.moments.CheckFirstInteraction(user.FID, tx.To)
			if err != nil {
				return nil
			}
		}
	}

	highValue := tx.Value != nil && tx.Value.Cmp(highValueThreshold) > 0

	var moments []models.Moment

	if firstTransaction {
		moment, err := c.moments.CreateMoment(MomentFields{
			FID:             user.FID,
			MomentType:      models.MomentFirstTransaction,
			Title:           "First Transaction on Monad",
			Description:     "You've made your first transaction on the Monad network!",
			TransactionHash: tx.Hash,
			ContractAddress: tx.To,
			IsRare:          true,
			Metadata:        models.Metadata{"value": FormatEther(tx.Value)},
		})
		if err != nil {
			log.Printf("❌ Error creating first-transaction moment for fid=%d: %v", user.FID, err)
			return nil
		}
		moments = append(moments, *moment)
	}

	if firstInteraction {
		label := ContractLabel(tx.To)
		moment, err := c.moments.CreateMoment(MomentFields{
			FID:             user.FID,
			MomentType:      models.MomentFirstInteraction,
			Title:           "First Interaction",
			Description:     "First time interacting with " + label,
			TransactionHash: tx.Hash,
			ContractAddress: tx.To,
			IsRare:          false,
			Metadata:        models.Metadata{"contractName": label},
		})
		if err != nil {
			log.Printf("❌ Error creating first-interaction moment for fid=%d: %v", user.FID, err)
			return nil
		}
		moments = append(moments, *moment)
	}

	if highValue {
		moment, err := c.moments.CreateMoment(MomentFields{
			FID:             user.FID,
			MomentType:      models.MomentHighValue,
			Title:           "Whale Alert",
			Description:     "Sent " + FormatEther(tx.Value) + " MONAD",
			TransactionHash: tx.Hash,
			ContractAddress: tx.To,
			IsRare:          true,
			Metadata:        models.Metadata{"value": FormatEther(tx.Value)},
		})
		if err != nil {
			log.Printf("❌ Error creating high-value moment for fid=%d: %v", user.FID, err)
			return nil
		}
		moments = append(moments, *moment)
	}

	return moments
}

// FormatEther renders a wei amount as a decimal ether string with no
// trailing zeros: 2000000000000000000 -> "2", 1500000000000000000 -> "1.5".
func FormatEther(wei *big.Int) string {
	if wei == nil {
		return "0"
	}
	whole, frac := new(big.Int), new(big.Int)
	whole.QuoRem(wei, weiPerEther, frac)
	if frac.Sign() == 0 {
		return whole.String()
	}
	digits := strings.TrimRight(pad18(frac.String()), "0")
	return whole.String() + "." + digits
}

func pad18(s string) string {
	for len(s) < 18 {
		s = "0" + s
	}
	return s
}

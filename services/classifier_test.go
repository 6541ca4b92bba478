package services

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"testing"
	"time"

	"monad-moments/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUserLookup struct {
	users map[string]*models.User
	err   error
}

func (f *fakeUserLookup) UserByWallet(address string) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.users[address], nil
}

type fakeContractChecker struct {
	contracts map[string]bool
	err       error
}

func (f *fakeContractChecker) IsContract(_ context.Context, address string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	return f.contracts[address], nil
}

type fakeMomentStore struct {
	created      []MomentFields
	interactions map[string]bool // "fid:contract" the user already touched
	createErr    error
	failAfter    int // fail creates once this many succeeded, 0 = never
}

func (f *fakeMomentStore) CreateMoment(fields MomentFields) (*models.Moment, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	if f.failAfter > 0 && len(f.created) >= f.failAfter {
		return nil, errors.New("insert failed")
	}
	f.created = append(f.created, fields)
	return &models.Moment{
		ID:              uint(len(f.created)),
		FID:             fields.FID,
		MomentType:      fields.MomentType,
		Title:           fields.Title,
		Description:     fields.Description,
		TransactionHash: fields.TransactionHash,
		ContractAddress: fields.ContractAddress,
		IsRare:          fields.IsRare,
		Metadata:        fields.Metadata,
	}, nil
}

func (f *fakeMomentStore) CheckFirstInteraction(fid int64, contract string) (bool, error) {
	return !f.interactions[fmt.Sprintf("%d:%s", fid, contract)], nil
}

func ether(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), big.NewInt(1e18))
}

func newUser(fid int64, wallet string, fresh bool) *models.User {
	seen := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	active := seen
	if !fresh {
		active = seen.Add(time.Hour)
	}
	return &models.User{
		FID:           fid,
		Username:      "tester",
		WalletAddress: wallet,
		FirstSeen:     seen,
		LastActive:    active,
	}
}

func TestProcessTransaction_FirstTransaction(t *testing.T) {
	wallet := "0xaaa1111111111111111111111111111111111111"
	users := &fakeUserLookup{users: map[string]*models.User{wallet: newUser(42, wallet, true)}}
	chain := &fakeContractChecker{}
	store := &fakeMomentStore{}
	classifier := NewMomentClassifier(users, chain, store)

	moments := classifier.ProcessTransaction(context.Background(), Transaction{
		Hash:  "0xhash1",
		From:  wallet,
		To:    "0xbbb2222222222222222222222222222222222222",
		Value: ether(2),
	})

	require.Len(t, moments, 1)
	assert.Equal(t, models.MomentFirstTransaction, moments[0].MomentType)
	assert.True(t, moments[0].IsRare)
	assert.Equal(t, "2", moments[0].Metadata["value"])
}

func TestProcessTransaction_AllThreeRules(t *testing.T) {
	wallet := "0xaaa1111111111111111111111111111111111111"
	contract := "0x1234567890123456789012345678901234abcd99"
	users := &fakeUserLookup{users: map[string]*models.User{wallet: newUser(42, wallet, true)}}
	chain := &fakeContractChecker{contracts: map[string]bool{contract: true}}
	store := &fakeMomentStore{}
	classifier := NewMomentClassifier(users, chain, store)

	moments := classifier.ProcessTransaction(context.Background(), Transaction{
		Hash:  "0xhash2",
		From:  wallet,
		To:    contract,
		Value: ether(15),
	})

	require.Len(t, moments, 3)
	assert.Equal(t, models.MomentFirstTransaction, moments[0].MomentType)
	assert.Equal(t, models.MomentFirstInteraction, moments[1].MomentType)
	assert.Equal(t, models.MomentHighValue, moments[2].MomentType)

	assert.False(t, moments[1].IsRare)
	assert.Contains(t, moments[1].Description, "Contract 0x1234...cd99")

	assert.True(t, moments[2].IsRare)
	assert.Equal(t, "Whale Alert", moments[2].Title)
	assert.Contains(t, moments[2].Description, "15 MONAD")
}

func TestProcessTransaction_HighValueBoundary(t *testing.T) {
	wallet := "0xaaa1111111111111111111111111111111111111"
	users := &fakeUserLookup{users: map[string]*models.User{wallet: newUser(42, wallet, false)}}
	classifier := NewMomentClassifier(users, &fakeContractChecker{}, &fakeMomentStore{})

	t.Run("exactly 10 does not fire", func(t *testing.T) {
		moments := classifier.ProcessTransaction(context.Background(), Transaction{
			Hash: "0xhash3", From: wallet, To: "0xdead", Value: ether(10),
		})
		assert.Empty(t, moments)
	})

	t.Run("just above 10 fires", func(t *testing.T) {
		value := new(big.Int).Add(ether(10), big.NewInt(1))
		moments := classifier.ProcessTransaction(context.Background(), Transaction{
			Hash: "0xhash4", From: wallet, To: "0xdead", Value: value,
		})
		require.Len(t, moments, 1)
		assert.Equal(t, models.MomentHighValue, moments[0].MomentType)
	})
}

func TestProcessTransaction_UnknownSender(t *testing.T) {
	classifier := NewMomentClassifier(&fakeUserLookup{}, &fakeContractChecker{}, &fakeMomentStore{})

	moments := classifier.ProcessTransaction(context.Background(), Transaction{
		Hash: "0xhash5", From: "0xnobody", To: "0xdead", Value: ether(50),
	})
	assert.Nil(t, moments)
}

func TestProcessTransaction_CollaboratorFailure(t *testing.T) {
	wallet := "0xaaa1111111111111111111111111111111111111"

	t.Run("lookup failure yields nothing", func(t *testing.T) {
		users := &fakeUserLookup{err: errors.New("db down")}
		classifier := NewMomentClassifier(users, &fakeContractChecker{}, &fakeMomentStore{})
		assert.Nil(t, classifier.ProcessTransaction(context.Background(), Transaction{
			From: wallet, Value: ether(50),
		}))
	})

	t.Run("chain failure aborts before any moment is created", func(t *testing.T) {
		users := &fakeUserLookup{users: map[string]*models.User{wallet: newUser(42, wallet, true)}}
		chain := &fakeContractChecker{err: errors.New("rpc timeout")}
		store := &fakeMomentStore{}
		classifier := NewMomentClassifier(users, chain, store)

		moments := classifier.ProcessTransaction(context.Background(), Transaction{
			Hash: "0xhash6", From: wallet, To: "0xdead", Value: ether(50),
		})
		assert.Nil(t, moments)
		assert.Empty(t, store.created)
	})

	t.Run("create failure keeps earlier moments persisted", func(t *testing.T) {
		users := &fakeUserLookup{users: map[string]*models.User{wallet: newUser(42, wallet, true)}}
		store := &fakeMomentStore{failAfter: 1}
		classifier := NewMomentClassifier(users, &fakeContractChecker{}, store)

		moments := classifier.ProcessTransaction(context.Background(), Transaction{
			Hash: "0xhash8", From: wallet, To: "0xdead", Value: ether(50),
		})
		assert.Nil(t, moments)
		// The first-transaction moment went in; the high-value one failed.
		require.Len(t, store.created, 1)
		assert.Equal(t, models.MomentFirstTransaction, store.created[0].MomentType)
	})
}

func TestProcessTransaction_RepeatInteractionSkipped(t *testing.T) {
	wallet := "0xaaa1111111111111111111111111111111111111"
	contract := "0xcafe000000000000000000000000000000000000"
	users := &fakeUserLookup{users: map[string]*models.User{wallet: newUser(42, wallet, false)}}
	chain := &fakeContractChecker{contracts: map[string]bool{contract: true}}
	store := &fakeMomentStore{interactions: map[string]bool{fmt.Sprintf("42:%s", contract): true}}
	classifier := NewMomentClassifier(users, chain, store)

	moments := classifier.ProcessTransaction(context.Background(), Transaction{
		Hash: "0xhash7", From: wallet, To: contract, Value: ether(1),
	})
	assert.Empty(t, moments)
}

func TestFormatEther(t *testing.T) {
	assert.Equal(t, "0", FormatEther(nil))
	assert.Equal(t, "0", FormatEther(big.NewInt(0)))
	assert.Equal(t, "2", FormatEther(ether(2)))
	assert.Equal(t, "1.5", FormatEther(big.NewInt(15e17)))
	assert.Equal(t, "0.000000000000000001", FormatEther(big.NewInt(1)))
	assert.Equal(t, "100", FormatEther(ether(100)))
}

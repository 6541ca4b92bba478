package workers

import (
	"context"
	"log"
	"time"

	"monad-moments/services"
)

// MomentScanClient bundles what the chain scan needs: tracked users,
// chain reads, and the classifier.
type MomentScanClient struct {
	Users      *services.UserService
	Chain      *services.ChainClient
	Classifier *services.MomentClassifier
}

func NewMomentScanClient(users *services.UserService, chain *services.ChainClient, classifier *services.MomentClassifier) *MomentScanClient {
	return &MomentScanClient{Users: users, Chain: chain, Classifier: classifier}
}

// recent transactions fetched per wallet on each sweep
const txsPerWallet = 5

// PollMoments periodically scans recent chain activity for every user
// with a connected wallet and runs the classifier over it. Collaborator
// failures are logged and skipped; the loop stops with the context.
func PollMoments(ctx context.Context, client *MomentScanClient, pollInterval time.Duration) {
	log.Println("Starting moment chain scan...")

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Moment chain scan stopped.")
			return
		case <-ticker.C:
			tracked, err := client.Users.UsersWithWallets()
			if err != nil {
				log.Printf("❌ Error listing wallet users: %v", err)
				continue
			}
			if len(tracked) == 0 {
				continue
			}

			created := 0
			for _, user := range tracked {
				txs, err := client.Chain.WalletTransactions(ctx, user.WalletAddress, txsPerWallet)
				if err != nil {
					log.Printf("❌ Error fetching transactions for fid=%d: %v", user.FID, err)
					continue
				}
				for _, tx := range txs {
					moments := client.Classifier.ProcessTransaction(ctx, services.Transaction{
						Hash:  tx.Hash,
						From:  tx.From,
						To:    tx.To,
						Value: tx.Value,
					})
					created += len(moments)
				}
			}
			if created > 0 {
				log.Printf("✅ Chain scan created %d moment(s) across %d wallet(s).", created, len(tracked))
			}
		}
	}
}

// services/scheduler.go
package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"monad-moments/models"

	"github.com/go-co-op/gocron/v2"
)

// Transaction-count thresholds that earn a milestone moment.
var milestoneThresholds = []uint64{10, 50, 100, 500, 1000}

// StartMilestoneScheduler runs a periodic sweep awarding milestone
// moments to users whose on-chain transaction count crossed a
// threshold. Each threshold fires at most once per user.
func StartMilestoneScheduler(users *UserService, moments *MomentService, chain *ChainClient) {
	sched, _ := gocron.NewScheduler()
	sched.Start()

	_, _ = sched.NewJob(
		gocron.DurationJob(1*time.Minute),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), 45*time.Second)
			defer cancel()

			tracked, err := users.UsersWithWallets()
			if err != nil {
				log.Printf("[Milestones] DB error: %v", err)
				return
			}

			for _, user := range tracked {
				txCount, err := chain.GetTransactionCount(ctx, user.WalletAddress)
				if err != nil {
					log.Printf("[Milestones] Failed to read tx count for fid=%d: %v", user.FID, err)
					continue
				}
				for _, threshold := range milestoneThresholds {
					if txCount < threshold {
						break
					}
					awarded, err := moments.HasMilestone(user.FID, threshold)
					if err != nil {
						log.Printf("[Milestones] Lookup failed for fid=%d: %v", user.FID, err)
						break
					}
					if awarded {
						continue
					}
					_, err = moments.CreateMoment(MomentFields{
						FID:         user.FID,
						MomentType:  models.MomentMilestone,
						Title:       fmt.Sprintf("%d Transactions on Monad", threshold),
						Description: fmt.Sprintf("You've crossed %d transactions on the Monad network!", threshold),
						IsRare:      threshold >= 100,
						Metadata:    models.Metadata{"threshold": threshold},
					})
					if err != nil {
						log.Printf("[Milestones] Failed to award milestone %d to fid=%d: %v", threshold, user.FID, err)
						break
					}
					log.Printf("✅ Milestone %d awarded to fid=%d", threshold, user.FID)
				}
			}
		}),
	)
}

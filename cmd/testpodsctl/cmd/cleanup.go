package cmd

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/klog/v2"

	"github.com/spf13/cobra"

	"github.com/testpods-go/testpods/pkg/cluster"
	"github.com/testpods-go/testpods/pkg/health"
	"github.com/testpods-go/testpods/pkg/testns"
)

const namespaceLabelSelector = "testpods.io/namespace=true"

var (
	cleanupPrefix     string
	cleanupOlderThan  time.Duration
	cleanupDryRun     bool
	cleanupWatch      time.Duration
	cleanupHealthPort int
)

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Delete leftover testpods-managed namespaces",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cleanupWatch <= 0 {
			return runCleanupOnce(context.Background())
		}
		return runCleanupWatch(cmd.Context())
	},
}

func init() {
	cleanupCmd.Flags().StringVar(&cleanupPrefix, "namespace-prefix", "testpods-", "Only delete namespaces with this name prefix")
	cleanupCmd.Flags().DurationVar(&cleanupOlderThan, "older-than", time.Hour, "Only delete namespaces created before this long ago")
	cleanupCmd.Flags().BoolVar(&cleanupDryRun, "dry-run", false, "Print what would be deleted without deleting it")
	cleanupCmd.Flags().DurationVar(&cleanupWatch, "watch", 0, "Run the sweep on this interval instead of once, serving /healthz and /readyz while it runs")
	cleanupCmd.Flags().IntVar(&cleanupHealthPort, "health-port", 8089, "Port for the liveness/readiness endpoints when --watch is set")
}

func runCleanupOnce(ctx context.Context) error {
	handle, err := cluster.NewLocalFromEnv()
	if err != nil {
		return fmt.Errorf("cleanup: discover cluster: %w", err)
	}
	defer handle.Close()
	return sweepNamespaces(ctx, handle)
}

// runCleanupWatch runs the sweep on a ticker, exposing /healthz and /readyz
// for the duration of a long-running janitor process (e.g. a CronJob-style
// sidecar), per the teacher's pkg/health HTTP endpoint shape.
func runCleanupWatch(ctx context.Context) error {
	checker := health.NewHealthChecker()
	mux := http.NewServeMux()
	health.AttachHealthEndpoints(mux, checker)
	server := &http.Server{Addr: fmt.Sprintf(":%d", cleanupHealthPort), Handler: mux}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			klog.Errorf("cleanup: health server: %v", err)
		}
	}()
	defer server.Close()

	handle, err := cluster.NewLocalFromEnv()
	if err != nil {
		checker.SetReady(false)
		return fmt.Errorf("cleanup: discover cluster: %w", err)
	}
	defer handle.Close()
	checker.SetReady(true)

	ticker := time.NewTicker(cleanupWatch)
	defer ticker.Stop()
	klog.V(0).Infof("cleanup: watching every %s, health endpoints on :%d", cleanupWatch, cleanupHealthPort)
	for {
		if err := sweepNamespaces(ctx, handle); err != nil {
			klog.Errorf("cleanup: sweep failed: %v", err)
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func sweepNamespaces(ctx context.Context, handle cluster.Handle) error {
	namespaces, err := handle.Clientset().CoreV1().Namespaces().List(ctx, metav1.ListOptions{
		LabelSelector: namespaceLabelSelector,
	})
	if err != nil {
		return fmt.Errorf("cleanup: list namespaces: %w", err)
	}

	cutoff := time.Now().Add(-cleanupOlderThan)
	var deleted, skipped int
	for _, ns := range namespaces.Items {
		if cleanupPrefix != "" && !strings.HasPrefix(ns.Name, cleanupPrefix) {
			skipped++
			continue
		}
		if ns.CreationTimestamp.Time.After(cutoff) {
			skipped++
			continue
		}
		if cleanupDryRun {
			fmt.Printf("would delete %s (created %s)\n", ns.Name, ns.CreationTimestamp.Time.Format(time.RFC3339))
			continue
		}
		fmt.Printf("deleting %s (created %s)\n", ns.Name, ns.CreationTimestamp.Time.Format(time.RFC3339))
		if err := testns.New(handle, ns.Name).Delete(ctx); err != nil {
			klog.Errorf("cleanup: delete namespace %s: %v", ns.Name, err)
			continue
		}
		deleted++
	}

	fmt.Printf("deleted %d namespace(s), skipped %d\n", deleted, skipped)
	return nil
}

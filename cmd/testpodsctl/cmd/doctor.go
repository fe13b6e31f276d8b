package cmd

import (
	"context"
	"fmt"
	"time"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/klog/v2"

	"github.com/spf13/cobra"

	"github.com/testpods-go/testpods/pkg/cluster"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check that the configured cluster is reachable",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		handle, err := cluster.NewLocalFromEnv()
		if err != nil {
			return fmt.Errorf("doctor: discover cluster: %w", err)
		}
		defer handle.Close()

		serverVersion, err := handle.Discovery().ServerVersion()
		if err != nil {
			return fmt.Errorf("doctor: reach API server: %w", err)
		}
		fmt.Printf("API server reachable: %s\n", serverVersion.GitVersion)

		nodes, err := handle.Clientset().CoreV1().Nodes().List(ctx, metav1.ListOptions{})
		if err != nil {
			return fmt.Errorf("doctor: list nodes: %w", err)
		}
		fmt.Printf("%d node(s):\n", len(nodes.Items))
		for _, node := range nodes.Items {
			addr := "<none>"
			for _, a := range node.Status.Addresses {
				if a.Type == "InternalIP" || a.Type == "ExternalIP" {
					addr = a.Address
					break
				}
			}
			fmt.Printf("  %s  %s\n", node.Name, addr)
		}

		klog.V(1).Info("doctor check completed successfully")
		return nil
	},
}

package cluster

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"sync"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"

	"github.com/testpods-go/testpods/pkg/hostport"
)

// nodeIPAccess is the local-cluster ExternalAccessStrategy: it shells out
// to kubectl to resolve a node's external (or internal, for a local
// kind/minikube cluster) IP, caches it, and reads the target Service's
// assigned NodePort via the typed client.
type nodeIPAccess struct {
	clientset kubernetes.Interface

	mu     sync.Mutex
	nodeIP string
}

func newNodeIPAccess(clientset kubernetes.Interface) *nodeIPAccess {
	return &nodeIPAccess{clientset: clientset}
}

func (a *nodeIPAccess) Resolve(ctx context.Context, namespace, serviceName string, servicePort int32) (hostport.HostAndPort, error) {
	svc, err := a.clientset.CoreV1().Services(namespace).Get(ctx, serviceName, metav1.GetOptions{})
	if err != nil {
		return hostport.HostAndPort{}, fmt.Errorf("cluster: external access: get service %s/%s: %w", namespace, serviceName, err)
	}
	if svc.Spec.Type != corev1.ServiceTypeNodePort && svc.Spec.Type != corev1.ServiceTypeLoadBalancer {
		return hostport.HostAndPort{}, fmt.Errorf("cluster: external access: service %s/%s is %s, not NodePort-addressable — this is a misconfiguration, not a transient failure", namespace, serviceName, svc.Spec.Type)
	}

	var nodePort int32
	for _, p := range svc.Spec.Ports {
		if servicePort == 0 || p.Port == servicePort {
			nodePort = p.NodePort
			break
		}
	}
	if nodePort == 0 {
		return hostport.HostAndPort{}, fmt.Errorf("cluster: external access: service %s/%s has no NodePort allocated for port %d", namespace, serviceName, servicePort)
	}

	ip, err := a.resolveNodeIP(ctx)
	if err != nil {
		return hostport.HostAndPort{}, fmt.Errorf("cluster: external access: resolve node IP: %w", err)
	}

	return hostport.New(ip, int(nodePort))
}

// resolveNodeIP shells out to kubectl once and caches the result for the
// lifetime of this handle.
func (a *nodeIPAccess) resolveNodeIP(ctx context.Context) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.nodeIP != "" {
		return a.nodeIP, nil
	}

	cmd := exec.CommandContext(ctx, "kubectl", "get", "nodes",
		"-o", `jsonpath={.items[0].status.addresses[?(@.type=="ExternalIP")].address}`)
	var out, stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("kubectl get nodes: %w: %s", err, stderr.String())
	}

	ip := strings.TrimSpace(out.String())
	if ip == "" {
		ip, err := a.internalNodeIP(ctx)
		if err != nil {
			return "", err
		}
		a.nodeIP = ip
		return ip, nil
	}
	a.nodeIP = ip
	return ip, nil
}

// internalNodeIP falls back to a node's InternalIP, the common case for a
// local kind/minikube cluster that has no ExternalIP set.
func (a *nodeIPAccess) internalNodeIP(ctx context.Context) (string, error) {
	cmd := exec.CommandContext(ctx, "kubectl", "get", "nodes",
		"-o", `jsonpath={.items[0].status.addresses[?(@.type=="InternalIP")].address}`)
	var out, stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("kubectl get nodes (internal IP): %w: %s", err, stderr.String())
	}
	ip := strings.TrimSpace(out.String())
	if ip == "" {
		return "", fmt.Errorf("no node IP (external or internal) found")
	}
	return ip, nil
}

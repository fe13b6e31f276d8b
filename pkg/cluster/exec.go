package cluster

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"

	corev1 "k8s.io/api/core/v1"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/kubernetes/scheme"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/remotecommand"
	utilexec "k8s.io/client-go/util/exec"

	"github.com/testpods-go/testpods/pkg/wait"
)

// PodExecRunner runs commands inside a specific container via
// remotecommand's SPDY executor, the same machinery the teacher's
// connectivity check uses to curl a service from inside the cluster. It
// backs pkg/wait's Command strategy.
type PodExecRunner struct {
	cfg       *rest.Config
	client    kubernetes.Interface
	namespace string
	podName   string
	container string
}

// NewPodExecRunner builds a CommandRunner targeting one container.
func NewPodExecRunner(cfg *rest.Config, client kubernetes.Interface, namespace, podName, container string) *PodExecRunner {
	return &PodExecRunner{cfg: cfg, client: client, namespace: namespace, podName: podName, container: container}
}

// RunCommand execs command inside the target container and reports its
// stdout/stderr plus a best-effort exit code: 0 on success, the remote
// exit code (with a nil error) when the executor reports a CodeExitError,
// and 1 with a non-nil error on any other StreamWithContext failure.
func (r *PodExecRunner) RunCommand(ctx context.Context, command []string) (exitCode int, stdout, stderr string, err error) {
	req := r.client.CoreV1().RESTClient().Post().
		Resource("pods").
		Name(r.podName).
		Namespace(r.namespace).
		SubResource("exec").
		VersionedParams(&corev1.PodExecOptions{
			Container: r.container,
			Command:   command,
			Stdout:    true,
			Stderr:    true,
		}, scheme.ParameterCodec)

	executor, err := remotecommand.NewSPDYExecutor(r.cfg, "POST", req.URL())
	if err != nil {
		return 0, "", "", fmt.Errorf("cluster: build exec request: %w", err)
	}

	var outBuf, errBuf bytes.Buffer
	streamErr := executor.StreamWithContext(ctx, remotecommand.StreamOptions{
		Stdout: &outBuf,
		Stderr: &errBuf,
	})
	if streamErr != nil {
		if exitErr, ok := streamErr.(utilexec.CodeExitError); ok {
			return exitErr.Code, outBuf.String(), errBuf.String(), nil
		}
		return 1, outBuf.String(), errBuf.String(), fmt.Errorf("cluster: exec command: %w", streamErr)
	}
	return 0, outBuf.String(), errBuf.String(), nil
}

// PodLogStreamer streams a container's logs via the typed client, backing
// pkg/wait's LogMessage strategy.
type PodLogStreamer struct {
	client    kubernetes.Interface
	namespace string
	podName   string
	container string
}

// NewPodLogStreamer builds a LogStreamer targeting one container.
func NewPodLogStreamer(client kubernetes.Interface, namespace, podName, container string) *PodLogStreamer {
	return &PodLogStreamer{client: client, namespace: namespace, podName: podName, container: container}
}

func (s *PodLogStreamer) StreamLogs(ctx context.Context) (wait.LogStream, error) {
	req := s.client.CoreV1().Pods(s.namespace).GetLogs(s.podName, &corev1.PodLogOptions{
		Container: s.container,
		Follow:    true,
	})
	stream, err := req.Stream(ctx)
	if err != nil {
		return nil, fmt.Errorf("cluster: stream logs: %w", err)
	}
	return &lineReader{reader: bufio.NewReader(stream), closer: stream}, nil
}

// lineReader adapts an io.ReadCloser into wait.LogStream's line-at-a-time
// contract.
type lineReader struct {
	reader *bufio.Reader
	closer io.Closer
}

func (l *lineReader) ReadLine() (string, error) {
	line, err := l.reader.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return line, nil
}

func (l *lineReader) Close() error { return l.closer.Close() }

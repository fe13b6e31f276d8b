package workload

import metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

func metav1Opts() metav1.GetOptions {
	return metav1.GetOptions{}
}

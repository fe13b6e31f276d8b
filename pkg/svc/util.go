package svc

import "k8s.io/apimachinery/pkg/util/intstr"

func intOrStringFromInt32(v int32) intstr.IntOrString {
	return intstr.FromInt32(v)
}

package crashid

import "strings"

// runtimeTypes lists well-known unchecked exception types. Text traces
// carry no class hierarchy, so membership is decided by name.
var runtimeTypes = map[string]bool{
	"java.lang.RuntimeException":                               true,
	"java.lang.ArithmeticException":                            true,
	"java.lang.ArrayIndexOutOfBoundsException":                 true,
	"java.lang.ArrayStoreException":                            true,
	"java.lang.ClassCastException":                             true,
	"java.lang.EnumConstantNotPresentException":                true,
	"java.lang.IllegalArgumentException":                       true,
	"java.lang.IllegalMonitorStateException":                   true,
	"java.lang.IllegalStateException":                          true,
	"java.lang.IllegalThreadStateException":                    true,
	"java.lang.IndexOutOfBoundsException":                      true,
	"java.lang.NegativeArraySizeException":                     true,
	"java.lang.NullPointerException":                           true,
	"java.lang.NumberFormatException":                          true,
	"java.lang.SecurityException":                              true,
	"java.lang.StringIndexOutOfBoundsException":                true,
	"java.lang.TypeNotPresentException":                        true,
	"java.lang.UnsupportedOperationException":                  true,
	"java.lang.reflect.UndeclaredThrowableException":           true,
	"java.io.UncheckedIOException":                             true,
	"java.util.ConcurrentModificationException":                true,
	"java.util.EmptyStackException":                            true,
	"java.util.MissingResourceException":                       true,
	"java.util.NoSuchElementException":                         true,
	"java.util.concurrent.RejectedExecutionException":          true,
	"android.content.ActivityNotFoundException":                true,
	"android.database.SQLException":                            true,
	"android.database.sqlite.SQLiteException":                  true,
	"android.os.NetworkOnMainThreadException":                  true,
	"android.util.AndroidRuntimeException":                     true,
	"android.view.ViewRootImpl$CalledFromWrongThreadException": true,
	"android.view.WindowManager$BadTokenException":             true,
	"kotlin.KotlinNullPointerException":                        true,
	"kotlin.UninitializedPropertyAccessException":              true,
}

// Classify derives a Kind from a fully-qualified type name.
func Classify(typeName string) Kind {
	typeName = strings.TrimSpace(typeName)
	switch {
	case typeName == "":
		return KindUnknown
	case typeName == OutOfMemoryType:
		return KindOutOfMemory
	case runtimeTypes[typeName]:
		return KindRuntime
	case strings.HasSuffix(typeName, "Error"):
		return KindError
	default:
		return KindChecked
	}
}

package deps

import (
	"fmt"
	"strings"
)

// Artifact is a jar in a Maven repository
type Artifact struct {
	Name    string
	Group   string
	ID      string
	Version string
}

// FileName is the jar's name on disk
func (a Artifact) FileName() string {
	return fmt.Sprintf("%s-%s.jar", a.ID, a.Version)
}

// URL returns the artifact location under the repository base URL
func (a Artifact) URL(repository string) string {
	return fmt.Sprintf("%s/%s/%s/%s/%s",
		strings.TrimRight(repository, "/"),
		strings.ReplaceAll(a.Group, ".", "/"),
		a.ID, a.Version, a.FileName())
}

// TestLibraries is the classpath generated test classes compile and run against
var TestLibraries = []Artifact{
	{Name: "RestAssured", Group: "io.rest-assured", ID: "rest-assured", Version: "5.3.0"},
	{Name: "RestAssured Common", Group: "io.rest-assured", ID: "rest-assured-common", Version: "5.3.0"},
	{Name: "RestAssured JsonPath", Group: "io.rest-assured", ID: "json-path", Version: "5.3.0"},
	{Name: "RestAssured XmlPath", Group: "io.rest-assured", ID: "xml-path", Version: "5.3.0"},
	{Name: "RestAssured JSON Schema Validator", Group: "io.rest-assured", ID: "json-schema-validator", Version: "5.3.0"},
	{Name: "Groovy", Group: "org.apache.groovy", ID: "groovy", Version: "4.0.11"},
	{Name: "Groovy XML", Group: "org.apache.groovy", ID: "groovy-xml", Version: "4.0.11"},
	{Name: "Groovy JSON", Group: "org.apache.groovy", ID: "groovy-json", Version: "4.0.11"},
	{Name: "Hamcrest", Group: "org.hamcrest", ID: "hamcrest", Version: "2.2"},
	{Name: "TestNG", Group: "org.testng", ID: "testng", Version: "7.7.1"},
	{Name: "JCommander", Group: "com.beust", ID: "jcommander", Version: "1.82"},
	{Name: "SLF4J API", Group: "org.slf4j", ID: "slf4j-api", Version: "1.7.36"},
	{Name: "Apache HttpClient", Group: "org.apache.httpcomponents", ID: "httpclient", Version: "4.5.13"},
	{Name: "Apache HttpCore", Group: "org.apache.httpcomponents", ID: "httpcore", Version: "4.4.16"},
	{Name: "Apache HttpMime", Group: "org.apache.httpcomponents", ID: "httpmime", Version: "4.5.13"},
	{Name: "Commons Logging", Group: "commons-logging", ID: "commons-logging", Version: "1.2"},
	{Name: "Commons Codec", Group: "commons-codec", ID: "commons-codec", Version: "1.15"},
	{Name: "Commons Lang", Group: "org.apache.commons", ID: "commons-lang3", Version: "3.12.0"},
	{Name: "TagSoup", Group: "org.ccil.cowan.tagsoup", ID: "tagsoup", Version: "1.2.1"},
	{Name: "Jackson Databind", Group: "com.fasterxml.jackson.core", ID: "jackson-databind", Version: "2.14.2"},
	{Name: "Jackson Core", Group: "com.fasterxml.jackson.core", ID: "jackson-core", Version: "2.14.2"},
	{Name: "Jackson Annotations", Group: "com.fasterxml.jackson.core", ID: "jackson-annotations", Version: "2.14.2"},

	// runtime of the RestAssured schema matcher
	{Name: "JSON Schema Validator", Group: "com.github.java-json-tools", ID: "json-schema-validator", Version: "2.2.14"},
	{Name: "JSON Schema Core", Group: "com.github.java-json-tools", ID: "json-schema-core", Version: "1.2.14"},
	{Name: "Jackson Coreutils", Group: "com.github.java-json-tools", ID: "jackson-coreutils", Version: "2.0"},
	{Name: "Jackson Coreutils Equivalence", Group: "com.github.java-json-tools", ID: "jackson-coreutils-equivalence", Version: "1.0"},
	{Name: "Msg Simple", Group: "com.github.java-json-tools", ID: "msg-simple", Version: "1.2"},
	{Name: "BTF", Group: "com.github.java-json-tools", ID: "btf", Version: "1.3"},
	{Name: "URI Template", Group: "com.github.java-json-tools", ID: "uri-template", Version: "0.10"},
	{Name: "Guava", Group: "com.google.guava", ID: "guava", Version: "28.2-android"},
	{Name: "JSR 305", Group: "com.google.code.findbugs", ID: "jsr305", Version: "3.0.2"},
	{Name: "Rhino", Group: "org.mozilla", ID: "rhino", Version: "1.7.7.2"},
	{Name: "Joda Time", Group: "joda-time", ID: "joda-time", Version: "2.10.5"},
	{Name: "Libphonenumber", Group: "com.googlecode.libphonenumber", ID: "libphonenumber", Version: "8.11.1"},
	{Name: "Mail API", Group: "com.sun.mail", ID: "mailapi", Version: "1.6.2"},
}
